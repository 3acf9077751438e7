package handmanager

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"holdem-server/pkg/cache"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker"
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/betting"
	"holdem-server/pkg/poker/gamestate"
	"holdem-server/pkg/poker/showdown"
	"holdem-server/pkg/store"
)

// handContext is a hand loaded inside a transaction
// Changes are made to the loaded records and written back by save.
type handContext struct {
	tx          store.Tx
	logger      logrus.FieldLogger
	hand        *model.Hand
	room        *model.Room
	players     []*model.HandPlayer
	roomPlayers map[int64]*model.RoomPlayer

	// round is the betting on the current street. It is only meaningful during a betting stage.
	round betting.Round
	// version is the sequence number of the last action, folded or recorded
	version  int
	recorded []*model.HandAction
	result   *showdown.Result
}

// load reads the hand and rebuilds the betting on its current street
func (m *Manager) load(ctx context.Context, tx store.Tx, handID string, forUpdate bool) (*handContext, error) {
	hand, err := tx.GetHand(ctx, handID, forUpdate)
	if err != nil {
		return nil, handNotFound(err, handID)
	}

	room, err := tx.GetRoom(ctx, hand.RoomID, forUpdate)
	if err != nil {
		return nil, roomNotFound(err, hand.RoomID)
	}

	players, err := tx.GetHandPlayers(ctx, handID)
	if err != nil {
		return nil, err
	}

	roomPlayers, err := tx.GetRoomPlayers(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	hc := &handContext{
		tx: tx,
		logger: m.logger.WithFields(logrus.Fields{
			"hand": hand.ID,
			"room": room.ID,
		}),
		hand:        hand,
		room:        room,
		players:     players,
		roomPlayers: make(map[int64]*model.RoomPlayer, len(roomPlayers)),
	}

	for _, rp := range roomPlayers {
		hc.roomPlayers[rp.PlayerID] = rp
	}

	for _, p := range players {
		if _, ok := hc.roomPlayers[p.PlayerID]; !ok {
			return nil, poker.NewError(poker.CodeInvariantViolation, "player %d in hand %s is not seated in room %s", p.PlayerID, hand.ID, room.ID)
		}
	}

	if hand.Stage.IsBetting() {
		if err := m.rebuild(ctx, hc); err != nil {
			return nil, err
		}
	}

	return hc, nil
}

// rebuild folds the actions of the current street into a betting round
func (m *Manager) rebuild(ctx context.Context, hc *handContext) error {
	stage := hc.hand.Stage
	actions, err := hc.tx.GetActions(ctx, hc.hand.ID, &stage)
	if err != nil {
		return err
	}

	if len(actions) > 0 {
		hc.version = actions[len(actions)-1].Sequence

		round, err := m.cache.Get(ctx, hc.hand.ID, hc.version)
		if err == nil {
			hc.round = round
			return nil
		}

		if !errors.Is(err, cache.ErrMiss) {
			hc.logger.WithError(err).Warn("could not read cached round")
		}
	}

	start, err := hc.streetStart(actions)
	if err != nil {
		return err
	}

	events := make([]betting.Event, len(actions))
	for i, a := range actions {
		events[i] = betting.Event{
			PlayerID: a.PlayerID,
			Action:   a.Action,
			Amount:   a.Amount,
		}
	}

	round, err := betting.Fold(betting.New(start), events)
	if err != nil {
		return poker.NewError(poker.CodeInvariantViolation, "could not rebuild %s of hand %s: %v", stage, hc.hand.ID, err)
	}

	hc.round = round
	return nil
}

// streetStart returns the state of the current street before any of its actions
// Stacks are rebuilt from the live room stacks by giving back what was bet on this street.
func (hc *handContext) streetStart(actions []*model.HandAction) (betting.Start, error) {
	moved := make(map[int64]int)
	acted := make(map[int64]bool)
	for _, a := range actions {
		if a.PlayerID == 0 {
			continue
		}

		moved[a.PlayerID] += a.Amount
		acted[a.PlayerID] = true
	}

	start := betting.Start{
		Players:  make([]betting.PlayerState, 0, len(hc.players)),
		MinRaise: hc.hand.BigBlind,
	}

	if hc.hand.Stage == gamestate.PreFlop {
		start.CurrentBet = hc.hand.BigBlind
	}

	for _, p := range hc.players {
		if p.Seat == hc.hand.DealerSeat {
			start.ActionAfter = p.PlayerID
		}

		start.Players = append(start.Players, betting.PlayerState{
			PlayerID: p.PlayerID,
			Seat:     p.Seat,
			Chips:    hc.roomPlayers[p.PlayerID].Chips + moved[p.PlayerID],
			Folded:   p.IsFolded() && !acted[p.PlayerID],
			AllIn:    p.Status == gamestate.AllIn && !acted[p.PlayerID],
		})
	}

	if start.ActionAfter == 0 {
		return start, poker.NewError(poker.CodeInvariantViolation, "dealer seat %d of hand %s has no player", hc.hand.DealerSeat, hc.hand.ID)
	}

	return start, nil
}

func (hc *handContext) player(playerID int64) *model.HandPlayer {
	for _, p := range hc.players {
		if p.PlayerID == playerID {
			return p
		}
	}

	return nil
}

func (hc *handContext) statuses() []gamestate.Status {
	statuses := make([]gamestate.Status, len(hc.players))
	for i, p := range hc.players {
		statuses[i] = p.Status
	}

	return statuses
}

func (hc *handContext) currentPlayerID() int64 {
	if !hc.hand.Stage.IsBetting() || !awaitingAction(hc.round) {
		return 0
	}

	p, ok := hc.round.NextPlayer()
	if !ok {
		return 0
	}

	return p.PlayerID
}

// apply applies a betting action and records it
// For a raise, amount is the target bet. For a blind, the blind size.
func (hc *handContext) apply(ctx context.Context, playerID int64, act action.Action, amount int) error {
	next, err := hc.round.Apply(playerID, act, amount)
	if err != nil {
		return err
	}

	moved := betting.Moved(hc.round, next, playerID)
	hc.round = next

	p := hc.player(playerID)
	rp := hc.roomPlayers[playerID]
	state, _ := next.Player(playerID)

	p.TotalBet += moved
	rp.Chips -= moved
	hc.hand.Pot += moved

	switch {
	case state.Folded:
		p.Status = gamestate.Folded
	case state.AllIn:
		p.Status = gamestate.AllIn
	}

	hc.logger.WithFields(logrus.Fields{
		"player": playerID,
		"action": string(act),
		"stage":  hc.hand.Stage.String(),
	}).Info(act.LogMessage(moved))

	return hc.record(ctx, &model.HandAction{
		PlayerID: playerID,
		Action:   act,
		Amount:   moved,
		Stage:    hc.hand.Stage,
	})
}

func (hc *handContext) record(ctx context.Context, a *model.HandAction) error {
	a.HandID = hc.hand.ID
	if err := hc.tx.AppendAction(ctx, a); err != nil {
		return err
	}

	hc.version = a.Sequence
	hc.recorded = append(hc.recorded, a)
	return nil
}

// save writes every loaded record back to the store
func (hc *handContext) save(ctx context.Context) error {
	if err := hc.tx.UpdateHand(ctx, hc.hand); err != nil {
		return err
	}

	for _, p := range hc.players {
		if err := hc.tx.UpdateHandPlayer(ctx, p); err != nil {
			return err
		}

		if err := hc.tx.UpdateRoomPlayer(ctx, hc.roomPlayers[p.PlayerID]); err != nil {
			return err
		}
	}

	return hc.tx.UpdateRoom(ctx, hc.room)
}

// awaitingAction returns true if someone still has a betting decision to make
func awaitingAction(r betting.Round) bool {
	if r.NonFoldedCount() <= 1 || r.IsComplete() {
		return false
	}

	if r.ActiveCount() > 1 {
		return true
	}

	// a lone active player only decides when facing a bigger bet
	var active betting.PlayerState
	highest := 0
	for _, p := range r.Players {
		switch {
		case p.Folded:
		case p.CanAct():
			active = p
		case p.Bet > highest:
			highest = p.Bet
		}
	}

	return active.Bet < highest
}
