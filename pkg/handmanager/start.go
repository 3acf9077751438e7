package handmanager

import (
	"context"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"
	"holdem-server/internal/util"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker"
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/betting"
	"holdem-server/pkg/poker/gamestate"
	"holdem-server/pkg/store"
)

const holeCardCount = 2

// StartNewHand deals a new hand in the room
// The dealer button moves to the next seated player, blinds are posted, and every
// playing seat gets two hole cards.
func (m *Manager) StartNewHand(ctx context.Context, roomID string) (*model.Hand, error) {
	unlock := m.roomLocks.Lock(roomID)
	defer unlock()

	var hc *handContext
	err := m.store.Tx(ctx, func(tx store.Tx) error {
		room, err := tx.GetRoom(ctx, roomID, true)
		if err != nil {
			return roomNotFound(err, roomID)
		}

		handNumber := 1
		latest, err := tx.GetLatestHand(ctx, roomID)
		switch {
		case err == nil:
			if !latest.IsComplete() {
				return poker.NewError(poker.CodeInvalidHandState, "hand %d is still in progress", latest.HandNumber)
			}

			handNumber = latest.HandNumber + 1
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		roomPlayers, err := tx.GetRoomPlayers(ctx, roomID)
		if err != nil {
			return err
		}

		playing := make([]*model.RoomPlayer, 0, len(roomPlayers))
		for _, rp := range roomPlayers {
			if rp.IsPlaying() {
				playing = append(playing, rp)
			}
		}

		if len(playing) < 2 {
			return poker.NewError(poker.CodeInsufficientPlayers, "at least two players with chips are needed to start a hand")
		}

		dealerSeat := nextDealer(playing, room.DealerSeat)
		order := leftOf(playing, dealerSeat)

		hand := &model.Hand{
			ID:             util.NewID(),
			RoomID:         room.ID,
			HandNumber:     handNumber,
			DealerSeat:     dealerSeat,
			SmallBlind:     room.SmallBlind,
			BigBlind:       room.BigBlind,
			Stage:          gamestate.PreFlop,
			CommunityCards: []deck.Card{},
		}

		if err := tx.CreateHand(ctx, hand); err != nil {
			return err
		}

		players, err := m.dealHoleCards(hand.ID, order)
		if err != nil {
			return err
		}

		if err := tx.CreateHandPlayers(ctx, players); err != nil {
			return err
		}

		room.DealerSeat = dealerSeat
		room.Status = model.RoomStatusInProgress

		hc = &handContext{
			tx: tx,
			logger: m.logger.WithFields(logrus.Fields{
				"hand": hand.ID,
				"room": room.ID,
			}),
			hand:        hand,
			room:        room,
			players:     sortBySeat(players),
			roomPlayers: make(map[int64]*model.RoomPlayer, len(playing)),
		}

		for _, rp := range playing {
			hc.roomPlayers[rp.PlayerID] = rp
		}

		start, err := hc.streetStart(nil)
		if err != nil {
			return err
		}

		hc.round = betting.New(start)

		// heads up, the dealer posts the small blind
		smallBlind, bigBlind := order[0], order[1]
		if len(order) == 2 {
			smallBlind, bigBlind = order[1], order[0]
		}

		if err := hc.apply(ctx, smallBlind.PlayerID, action.SmallBlind, room.SmallBlind); err != nil {
			return err
		}

		if err := hc.apply(ctx, bigBlind.PlayerID, action.BigBlind, room.BigBlind); err != nil {
			return err
		}

		if err := m.advance(ctx, hc); err != nil {
			return err
		}

		return hc.save(ctx)
	})
	if err != nil {
		return nil, err
	}

	hc.logger.WithFields(logrus.Fields{
		"handNumber": hc.hand.HandNumber,
		"dealerSeat": hc.hand.DealerSeat,
		"players":    len(hc.players),
	}).Info("started hand")

	m.afterCommit(ctx, hc)
	return hc.hand, nil
}

// dealHoleCards deals one card at a time around the table, starting left of the dealer
func (m *Manager) dealHoleCards(handID string, order []*model.RoomPlayer) ([]*model.HandPlayer, error) {
	d := deck.New()
	d.Shuffle(m.random)

	players := make([]*model.HandPlayer, len(order))
	for i, rp := range order {
		players[i] = &model.HandPlayer{
			HandID:    handID,
			PlayerID:  rp.PlayerID,
			Seat:      rp.Seat,
			HoleCards: make([]deck.Card, 0, holeCardCount),
			Status:    gamestate.Active,
		}
	}

	for round := 0; round < holeCardCount; round++ {
		for _, p := range players {
			card, err := d.Draw()
			if err != nil {
				return nil, err
			}

			p.HoleCards = append(p.HoleCards, card)
		}
	}

	return players, nil
}

// nextDealer returns the seat of the first playing seat after the previous dealer
// players must be in seat order. A previous seat of -1 gives the first seat.
func nextDealer(players []*model.RoomPlayer, previous int) int {
	for _, p := range players {
		if p.Seat > previous {
			return p.Seat
		}
	}

	return players[0].Seat
}

// leftOf rotates the players so the seat left of the dealer comes first and the dealer last
func leftOf(players []*model.RoomPlayer, dealerSeat int) []*model.RoomPlayer {
	dealer := 0
	for i, p := range players {
		if p.Seat == dealerSeat {
			dealer = i
			break
		}
	}

	n := len(players)
	order := make([]*model.RoomPlayer, n)
	for i := range order {
		order[i] = players[(dealer+1+i)%n]
	}

	return order
}

func sortBySeat(players []*model.HandPlayer) []*model.HandPlayer {
	sorted := make([]*model.HandPlayer, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Seat < sorted[j].Seat
	})

	return sorted
}
