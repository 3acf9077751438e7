package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"holdem-server/pkg/db"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/gamestate"
	"holdem-server/pkg/store"
)

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

const roomColumns = `
rooms.id,
rooms.name,
rooms.small_blind,
rooms.big_blind,
rooms.max_players,
rooms.status,
rooms.dealer_seat,
rooms.created,
rooms.updated`

const roomPlayerColumns = `
room_players.room_id,
room_players.player_id,
room_players.seat,
room_players.chips,
room_players.status,
room_players.created,
room_players.updated`

const handColumns = `
hands.id,
hands.room_id,
hands.hand_number,
hands.dealer_seat,
hands.small_blind,
hands.big_blind,
hands.stage,
hands.community_cards,
hands.pot,
hands.started_at,
hands.ended_at`

const handPlayerColumns = `
hand_players.hand_id,
hand_players.player_id,
hand_players.seat,
hand_players.hole_cards,
hand_players.status,
hand_players.total_bet,
hand_players.amount_won,
hand_players.best_hand`

const handActionColumns = `
hand_actions.hand_id,
hand_actions.sequence,
hand_actions.player_id,
hand_actions.action,
hand_actions.amount,
hand_actions.stage,
hand_actions.cards,
hand_actions.created`

// Store is a Postgres backed store
// Each transaction runs at READ COMMITTED. Rows read for update stay locked until commit,
// which serializes writers of the same hand or room.
type Store struct {
	db *sql.DB
}

// New returns a store that uses the database connection
func New(sqlDB *sql.DB) *Store {
	return &Store{db: sqlDB}
}

// Tx runs fn in a database transaction
func (s *Store) Tx(ctx context.Context, fn func(tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}

	if err := fn(&tx{tx: sqlTx}); err != nil {
		rollback(sqlTx)
		return err
	}

	return sqlTx.Commit()
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logrus.WithError(err).Error("could not rollback transaction")
	}
}

// translate converts driver errors into store errors
func translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqDuplicateKeyErrorCode {
		return store.ErrDuplicateKey
	}

	return err
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return store.ErrNotFound
	}

	return nil
}

func parseCards(s string) ([]deck.Card, error) {
	if s == "" {
		return []deck.Card{}, nil
	}

	return deck.ParseCards(strings.Split(s, ","))
}

type tx struct {
	tx *sql.Tx
}

func getRoomByRow(row db.Scanner) (*model.Room, error) {
	var r model.Room
	var status string
	if err := row.Scan(
		&r.ID,
		&r.Name,
		&r.SmallBlind,
		&r.BigBlind,
		&r.MaxPlayers,
		&status,
		&r.DealerSeat,
		&r.Created,
		&r.Updated,
	); err != nil {
		return nil, translate(err)
	}

	r.Status = model.RoomStatus(status)
	return &r, nil
}

func (t *tx) CreateRoom(ctx context.Context, room *model.Room) error {
	const query = `
INSERT INTO rooms (id, name, small_blind, big_blind, max_players, status, dealer_seat)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created, updated`

	row := t.tx.QueryRowContext(ctx, query, room.ID, room.Name, room.SmallBlind, room.BigBlind, room.MaxPlayers, string(room.Status), room.DealerSeat)
	return translate(row.Scan(&room.Created, &room.Updated))
}

func (t *tx) GetRoom(ctx context.Context, id string, forUpdate bool) (*model.Room, error) {
	query := `
SELECT ` + roomColumns + `
FROM rooms
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}

	return getRoomByRow(t.tx.QueryRowContext(ctx, query, id))
}

func (t *tx) UpdateRoom(ctx context.Context, room *model.Room) error {
	const query = `
UPDATE rooms
SET name        = $1,
    small_blind = $2,
    big_blind   = $3,
    max_players = $4,
    status      = $5,
    dealer_seat = $6,
    updated     = (NOW() AT TIME ZONE 'UTC')
WHERE id = $7
RETURNING updated`

	row := t.tx.QueryRowContext(ctx, query, room.Name, room.SmallBlind, room.BigBlind, room.MaxPlayers, string(room.Status), room.DealerSeat, room.ID)
	return translate(row.Scan(&room.Updated))
}

func getRoomPlayerByRow(row db.Scanner) (*model.RoomPlayer, error) {
	var rp model.RoomPlayer
	var status string
	if err := row.Scan(
		&rp.RoomID,
		&rp.PlayerID,
		&rp.Seat,
		&rp.Chips,
		&status,
		&rp.Created,
		&rp.Updated,
	); err != nil {
		return nil, translate(err)
	}

	rp.Status = model.RoomPlayerStatus(status)
	return &rp, nil
}

func (t *tx) AddRoomPlayer(ctx context.Context, rp *model.RoomPlayer) error {
	const query = `
INSERT INTO room_players (room_id, player_id, seat, chips, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING created, updated`

	row := t.tx.QueryRowContext(ctx, query, rp.RoomID, rp.PlayerID, rp.Seat, rp.Chips, string(rp.Status))
	return translate(row.Scan(&rp.Created, &rp.Updated))
}

func (t *tx) GetRoomPlayers(ctx context.Context, roomID string) ([]*model.RoomPlayer, error) {
	const query = `
SELECT ` + roomPlayerColumns + `
FROM room_players
WHERE room_id = $1
ORDER BY seat`

	rows, err := t.tx.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*model.RoomPlayer, 0)
	for rows.Next() {
		rp, err := getRoomPlayerByRow(rows)
		if err != nil {
			return nil, err
		}

		players = append(players, rp)
	}

	return players, rows.Err()
}

func (t *tx) UpdateRoomPlayer(ctx context.Context, rp *model.RoomPlayer) error {
	const query = `
UPDATE room_players
SET seat    = $1,
    chips   = $2,
    status  = $3,
    updated = (NOW() AT TIME ZONE 'UTC')
WHERE room_id = $4
  AND player_id = $5
RETURNING updated`

	row := t.tx.QueryRowContext(ctx, query, rp.Seat, rp.Chips, string(rp.Status), rp.RoomID, rp.PlayerID)
	return translate(row.Scan(&rp.Updated))
}

func getHandByRow(row db.Scanner) (*model.Hand, error) {
	var h model.Hand
	var stage, cards string
	var endedAt sql.NullTime
	if err := row.Scan(
		&h.ID,
		&h.RoomID,
		&h.HandNumber,
		&h.DealerSeat,
		&h.SmallBlind,
		&h.BigBlind,
		&stage,
		&cards,
		&h.Pot,
		&h.StartedAt,
		&endedAt,
	); err != nil {
		return nil, translate(err)
	}

	var err error
	if h.Stage, err = gamestate.ParseStage(stage); err != nil {
		return nil, fmt.Errorf("hand %s: %w", h.ID, err)
	}

	if h.CommunityCards, err = parseCards(cards); err != nil {
		return nil, fmt.Errorf("hand %s: %w", h.ID, err)
	}

	if endedAt.Valid {
		h.EndedAt = &endedAt.Time
	}

	return &h, nil
}

func (t *tx) CreateHand(ctx context.Context, hand *model.Hand) error {
	const query = `
INSERT INTO hands (id, room_id, hand_number, dealer_seat, small_blind, big_blind, stage, community_cards, pot)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING started_at`

	row := t.tx.QueryRowContext(ctx, query,
		hand.ID,
		hand.RoomID,
		hand.HandNumber,
		hand.DealerSeat,
		hand.SmallBlind,
		hand.BigBlind,
		hand.Stage.String(),
		deck.CardsToString(hand.CommunityCards),
		hand.Pot,
	)

	return translate(row.Scan(&hand.StartedAt))
}

func (t *tx) GetHand(ctx context.Context, id string, forUpdate bool) (*model.Hand, error) {
	query := `
SELECT ` + handColumns + `
FROM hands
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}

	return getHandByRow(t.tx.QueryRowContext(ctx, query, id))
}

func (t *tx) GetLatestHand(ctx context.Context, roomID string) (*model.Hand, error) {
	const query = `
SELECT ` + handColumns + `
FROM hands
WHERE room_id = $1
ORDER BY hand_number DESC
LIMIT 1`

	return getHandByRow(t.tx.QueryRowContext(ctx, query, roomID))
}

func (t *tx) UpdateHand(ctx context.Context, hand *model.Hand) error {
	const query = `
UPDATE hands
SET stage           = $1,
    community_cards = $2,
    pot             = $3,
    ended_at        = $4
WHERE id = $5`

	var endedAt sql.NullTime
	if hand.EndedAt != nil {
		endedAt = sql.NullTime{Time: *hand.EndedAt, Valid: true}
	}

	res, err := t.tx.ExecContext(ctx, query, hand.Stage.String(), deck.CardsToString(hand.CommunityCards), hand.Pot, endedAt, hand.ID)
	return expectOne(res, err)
}

func getHandPlayerByRow(row db.Scanner) (*model.HandPlayer, error) {
	var hp model.HandPlayer
	var cards, status string
	if err := row.Scan(
		&hp.HandID,
		&hp.PlayerID,
		&hp.Seat,
		&cards,
		&status,
		&hp.TotalBet,
		&hp.AmountWon,
		&hp.BestHand,
	); err != nil {
		return nil, translate(err)
	}

	var err error
	if hp.HoleCards, err = parseCards(cards); err != nil {
		return nil, fmt.Errorf("hand %s, player %d: %w", hp.HandID, hp.PlayerID, err)
	}

	hp.Status = gamestate.Status(status)
	return &hp, nil
}

func (t *tx) CreateHandPlayers(ctx context.Context, players []*model.HandPlayer) error {
	const query = `
INSERT INTO hand_players (hand_id, player_id, seat, hole_cards, status, total_bet, amount_won, best_hand)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, hp := range players {
		if _, err := t.tx.ExecContext(ctx, query,
			hp.HandID,
			hp.PlayerID,
			hp.Seat,
			deck.CardsToString(hp.HoleCards),
			string(hp.Status),
			hp.TotalBet,
			hp.AmountWon,
			hp.BestHand,
		); err != nil {
			return translate(err)
		}
	}

	return nil
}

func (t *tx) GetHandPlayers(ctx context.Context, handID string) ([]*model.HandPlayer, error) {
	const query = `
SELECT ` + handPlayerColumns + `
FROM hand_players
WHERE hand_id = $1
ORDER BY seat`

	rows, err := t.tx.QueryContext(ctx, query, handID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*model.HandPlayer, 0)
	for rows.Next() {
		hp, err := getHandPlayerByRow(rows)
		if err != nil {
			return nil, err
		}

		players = append(players, hp)
	}

	return players, rows.Err()
}

func (t *tx) UpdateHandPlayer(ctx context.Context, hp *model.HandPlayer) error {
	const query = `
UPDATE hand_players
SET status     = $1,
    total_bet  = $2,
    amount_won = $3,
    best_hand  = $4
WHERE hand_id = $5
  AND player_id = $6`

	res, err := t.tx.ExecContext(ctx, query, string(hp.Status), hp.TotalBet, hp.AmountWon, hp.BestHand, hp.HandID, hp.PlayerID)
	return expectOne(res, err)
}

func getHandActionByRow(row db.Scanner) (*model.HandAction, error) {
	var a model.HandAction
	var playerID sql.NullInt64
	var act, stage, cards string
	if err := row.Scan(
		&a.HandID,
		&a.Sequence,
		&playerID,
		&act,
		&a.Amount,
		&stage,
		&cards,
		&a.Created,
	); err != nil {
		return nil, translate(err)
	}

	a.PlayerID = playerID.Int64
	a.Action = action.Action(act)

	var err error
	if a.Stage, err = gamestate.ParseStage(stage); err != nil {
		return nil, fmt.Errorf("hand %s, action %d: %w", a.HandID, a.Sequence, err)
	}

	if a.Cards, err = parseCards(cards); err != nil {
		return nil, fmt.Errorf("hand %s, action %d: %w", a.HandID, a.Sequence, err)
	}

	if len(a.Cards) == 0 {
		a.Cards = nil
	}

	return &a, nil
}

// AppendAction relies on the caller holding the hand row lock so the sequence cannot race
func (t *tx) AppendAction(ctx context.Context, a *model.HandAction) error {
	const query = `
INSERT INTO hand_actions (hand_id, sequence, player_id, action, amount, stage, cards)
SELECT $1, COALESCE(MAX(sequence), 0) + 1, $2, $3, $4, $5, $6
FROM hand_actions
WHERE hand_id = $1
RETURNING sequence, created`

	var playerID sql.NullInt64
	if a.PlayerID != 0 {
		playerID = sql.NullInt64{Int64: a.PlayerID, Valid: true}
	}

	row := t.tx.QueryRowContext(ctx, query, a.HandID, playerID, string(a.Action), a.Amount, a.Stage.String(), deck.CardsToString(a.Cards))
	return translate(row.Scan(&a.Sequence, &a.Created))
}

func (t *tx) GetActions(ctx context.Context, handID string, stage *gamestate.Stage) ([]*model.HandAction, error) {
	query := `
SELECT ` + handActionColumns + `
FROM hand_actions
WHERE hand_id = $1`
	args := []interface{}{handID}
	if stage != nil {
		query += `
  AND stage = $2`
		args = append(args, stage.String())
	}

	query += `
ORDER BY sequence`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := make([]*model.HandAction, 0)
	for rows.Next() {
		a, err := getHandActionByRow(rows)
		if err != nil {
			return nil, err
		}

		actions = append(actions, a)
	}

	return actions, rows.Err()
}
