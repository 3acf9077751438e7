package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker/gamestate"
	"holdem-server/pkg/store"
)

type roomPlayerKey struct {
	roomID   string
	playerID int64
}

type handPlayerKey struct {
	handID   string
	playerID int64
}

type state struct {
	rooms       map[string]model.Room
	roomPlayers map[roomPlayerKey]model.RoomPlayer
	hands       map[string]model.Hand
	handPlayers map[handPlayerKey]model.HandPlayer
	actions     map[string][]model.HandAction
}

func (s *state) clone() *state {
	c := &state{
		rooms:       make(map[string]model.Room, len(s.rooms)),
		roomPlayers: make(map[roomPlayerKey]model.RoomPlayer, len(s.roomPlayers)),
		hands:       make(map[string]model.Hand, len(s.hands)),
		handPlayers: make(map[handPlayerKey]model.HandPlayer, len(s.handPlayers)),
		actions:     make(map[string][]model.HandAction, len(s.actions)),
	}

	for k, v := range s.rooms {
		c.rooms[k] = v
	}

	for k, v := range s.roomPlayers {
		c.roomPlayers[k] = v
	}

	for k, v := range s.hands {
		c.hands[k] = v
	}

	for k, v := range s.handPlayers {
		c.handPlayers[k] = v
	}

	// actions are append-only, so sharing the backing records is safe
	for k, v := range s.actions {
		c.actions[k] = v[:len(v):len(v)]
	}

	return c
}

// Store is an in-memory store
// Transactions run one at a time against a copy of the data, which replaces the
// data only when the transaction succeeds.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

// New returns an empty in-memory store
func New() *Store {
	return &Store{
		state: &state{
			rooms:       make(map[string]model.Room),
			roomPlayers: make(map[roomPlayerKey]model.RoomPlayer),
			hands:       make(map[string]model.Hand),
			handPlayers: make(map[handPlayerKey]model.HandPlayer),
			actions:     make(map[string][]model.HandAction),
		},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Tx runs fn in a transaction
func (s *Store) Tx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &tx{state: s.state.clone(), now: s.now}
	if err := fn(tx); err != nil {
		return err
	}

	s.state = tx.state
	return nil
}

type tx struct {
	state *state
	now   func() time.Time
}

func copyCards(cards []deck.Card) []deck.Card {
	if cards == nil {
		return nil
	}

	c := make([]deck.Card, len(cards))
	copy(c, cards)
	return c
}

func (t *tx) CreateRoom(ctx context.Context, room *model.Room) error {
	if _, ok := t.state.rooms[room.ID]; ok {
		return store.ErrDuplicateKey
	}

	room.Created = t.now()
	room.Updated = room.Created
	t.state.rooms[room.ID] = *room
	return nil
}

func (t *tx) GetRoom(ctx context.Context, id string, forUpdate bool) (*model.Room, error) {
	room, ok := t.state.rooms[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	return &room, nil
}

func (t *tx) UpdateRoom(ctx context.Context, room *model.Room) error {
	if _, ok := t.state.rooms[room.ID]; !ok {
		return store.ErrNotFound
	}

	room.Updated = t.now()
	t.state.rooms[room.ID] = *room
	return nil
}

func (t *tx) AddRoomPlayer(ctx context.Context, rp *model.RoomPlayer) error {
	if _, ok := t.state.rooms[rp.RoomID]; !ok {
		return store.ErrNotFound
	}

	key := roomPlayerKey{roomID: rp.RoomID, playerID: rp.PlayerID}
	if _, ok := t.state.roomPlayers[key]; ok {
		return store.ErrDuplicateKey
	}

	for k, v := range t.state.roomPlayers {
		if k.roomID == rp.RoomID && v.Seat == rp.Seat {
			return store.ErrDuplicateKey
		}
	}

	rp.Created = t.now()
	rp.Updated = rp.Created
	t.state.roomPlayers[key] = *rp
	return nil
}

func (t *tx) GetRoomPlayers(ctx context.Context, roomID string) ([]*model.RoomPlayer, error) {
	players := make([]*model.RoomPlayer, 0)
	for k, v := range t.state.roomPlayers {
		if k.roomID == roomID {
			rp := v
			players = append(players, &rp)
		}
	}

	sort.Slice(players, func(i, j int) bool {
		return players[i].Seat < players[j].Seat
	})

	return players, nil
}

func (t *tx) UpdateRoomPlayer(ctx context.Context, rp *model.RoomPlayer) error {
	key := roomPlayerKey{roomID: rp.RoomID, playerID: rp.PlayerID}
	if _, ok := t.state.roomPlayers[key]; !ok {
		return store.ErrNotFound
	}

	rp.Updated = t.now()
	t.state.roomPlayers[key] = *rp
	return nil
}

func (t *tx) CreateHand(ctx context.Context, hand *model.Hand) error {
	if _, ok := t.state.hands[hand.ID]; ok {
		return store.ErrDuplicateKey
	}

	hand.StartedAt = t.now()
	h := *hand
	h.CommunityCards = copyCards(hand.CommunityCards)
	t.state.hands[hand.ID] = h
	return nil
}

func (t *tx) GetHand(ctx context.Context, id string, forUpdate bool) (*model.Hand, error) {
	hand, ok := t.state.hands[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	hand.CommunityCards = copyCards(hand.CommunityCards)
	return &hand, nil
}

func (t *tx) GetLatestHand(ctx context.Context, roomID string) (*model.Hand, error) {
	var latest *model.Hand
	for _, h := range t.state.hands {
		if h.RoomID != roomID {
			continue
		}

		if latest == nil || h.HandNumber > latest.HandNumber {
			hand := h
			latest = &hand
		}
	}

	if latest == nil {
		return nil, store.ErrNotFound
	}

	latest.CommunityCards = copyCards(latest.CommunityCards)
	return latest, nil
}

func (t *tx) UpdateHand(ctx context.Context, hand *model.Hand) error {
	if _, ok := t.state.hands[hand.ID]; !ok {
		return store.ErrNotFound
	}

	h := *hand
	h.CommunityCards = copyCards(hand.CommunityCards)
	t.state.hands[hand.ID] = h
	return nil
}

func (t *tx) CreateHandPlayers(ctx context.Context, players []*model.HandPlayer) error {
	for _, hp := range players {
		key := handPlayerKey{handID: hp.HandID, playerID: hp.PlayerID}
		if _, ok := t.state.handPlayers[key]; ok {
			return store.ErrDuplicateKey
		}

		p := *hp
		p.HoleCards = copyCards(hp.HoleCards)
		t.state.handPlayers[key] = p
	}

	return nil
}

func (t *tx) GetHandPlayers(ctx context.Context, handID string) ([]*model.HandPlayer, error) {
	players := make([]*model.HandPlayer, 0)
	for k, v := range t.state.handPlayers {
		if k.handID == handID {
			hp := v
			hp.HoleCards = copyCards(v.HoleCards)
			players = append(players, &hp)
		}
	}

	sort.Slice(players, func(i, j int) bool {
		return players[i].Seat < players[j].Seat
	})

	return players, nil
}

func (t *tx) UpdateHandPlayer(ctx context.Context, hp *model.HandPlayer) error {
	key := handPlayerKey{handID: hp.HandID, playerID: hp.PlayerID}
	if _, ok := t.state.handPlayers[key]; !ok {
		return store.ErrNotFound
	}

	p := *hp
	p.HoleCards = copyCards(hp.HoleCards)
	t.state.handPlayers[key] = p
	return nil
}

func (t *tx) AppendAction(ctx context.Context, a *model.HandAction) error {
	if _, ok := t.state.hands[a.HandID]; !ok {
		return store.ErrNotFound
	}

	actions := t.state.actions[a.HandID]
	a.Sequence = len(actions) + 1
	a.Created = t.now()

	record := *a
	record.Cards = copyCards(a.Cards)
	t.state.actions[a.HandID] = append(actions, record)
	return nil
}

func (t *tx) GetActions(ctx context.Context, handID string, stage *gamestate.Stage) ([]*model.HandAction, error) {
	actions := make([]*model.HandAction, 0)
	for _, a := range t.state.actions[handID] {
		if stage != nil && a.Stage != *stage {
			continue
		}

		record := a
		record.Cards = copyCards(a.Cards)
		actions = append(actions, &record)
	}

	return actions, nil
}
