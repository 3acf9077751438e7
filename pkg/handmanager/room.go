package handmanager

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"holdem-server/internal/util"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker"
	"holdem-server/pkg/store"
)

// MaxSeats is the most players a room can seat
const MaxSeats = 10

// RoomOptions describe a new room
type RoomOptions struct {
	// Name defaults to a random name
	Name       string `json:"name"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
	MaxPlayers int    `json:"maxPlayers"`
}

// Validate returns an error if the room cannot be created
func (r RoomOptions) Validate() error {
	if r.SmallBlind <= 0 {
		return poker.NewError(poker.CodeInvalidInput, "small blind must be positive")
	}

	if r.BigBlind < r.SmallBlind {
		return poker.NewError(poker.CodeInvalidInput, "big blind must be at least the small blind")
	}

	if r.MaxPlayers < 2 || r.MaxPlayers > MaxSeats {
		return poker.NewError(poker.CodeInvalidInput, "a room seats 2 to %d players", MaxSeats)
	}

	return nil
}

// RoomState is a room and the players seated in it
type RoomState struct {
	Room    *model.Room         `json:"room"`
	Players []*model.RoomPlayer `json:"players"`
	// LatestHandID is the most recent hand, if any
	LatestHandID string `json:"latestHandId,omitempty"`
}

// CreateRoom creates an empty room
func (m *Manager) CreateRoom(ctx context.Context, opts RoomOptions) (*model.Room, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Name == "" {
		opts.Name = util.GetRandomName()
	}

	room := &model.Room{
		ID:         util.NewID(),
		Name:       opts.Name,
		SmallBlind: opts.SmallBlind,
		BigBlind:   opts.BigBlind,
		MaxPlayers: opts.MaxPlayers,
		Status:     model.RoomStatusWaiting,
		DealerSeat: -1,
	}

	err := m.store.Tx(ctx, func(tx store.Tx) error {
		return tx.CreateRoom(ctx, room)
	})
	if err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"room": room.ID,
		"name": room.Name,
	}).Info("created room")

	return room, nil
}

// SitDown seats a player with a stack of chips
// Players who sit down during a hand are dealt into the next one.
func (m *Manager) SitDown(ctx context.Context, roomID string, playerID int64, seat, chips int) (*model.RoomPlayer, error) {
	if playerID <= 0 {
		return nil, poker.NewError(poker.CodeInvalidInput, "player id must be positive")
	}

	if chips <= 0 {
		return nil, poker.NewError(poker.CodeInvalidInput, "you must sit down with chips")
	}

	unlock := m.roomLocks.Lock(roomID)
	defer unlock()

	rp := &model.RoomPlayer{
		RoomID:   roomID,
		PlayerID: playerID,
		Seat:     seat,
		Chips:    chips,
		Status:   model.RoomPlayerStatusActive,
	}

	err := m.store.Tx(ctx, func(tx store.Tx) error {
		room, err := tx.GetRoom(ctx, roomID, true)
		if err != nil {
			return roomNotFound(err, roomID)
		}

		if seat < 0 || seat >= room.MaxPlayers {
			return poker.NewError(poker.CodeInvalidInput, "seat must be between 0 and %d", room.MaxPlayers-1)
		}

		if err := tx.AddRoomPlayer(ctx, rp); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				return poker.NewError(poker.CodeSeatTaken, "seat %d is taken or you are already seated", seat)
			}

			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"room":   roomID,
		"player": playerID,
		"seat":   seat,
	}).Info("player sat down")

	return rp, nil
}

// GetRoom returns the room and its seated players
func (m *Manager) GetRoom(ctx context.Context, roomID string) (*RoomState, error) {
	var state *RoomState
	err := m.store.Tx(ctx, func(tx store.Tx) error {
		room, err := tx.GetRoom(ctx, roomID, false)
		if err != nil {
			return roomNotFound(err, roomID)
		}

		players, err := tx.GetRoomPlayers(ctx, roomID)
		if err != nil {
			return err
		}

		state = &RoomState{Room: room, Players: players}

		latest, err := tx.GetLatestHand(ctx, roomID)
		switch {
		case err == nil:
			state.LatestHandID = latest.ID
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}
