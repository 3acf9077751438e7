package store

import (
	"context"
	"errors"

	"holdem-server/pkg/model"
	"holdem-server/pkg/poker/gamestate"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrDuplicateKey is returned when a record conflicts with an existing one, i.e., a taken seat
var ErrDuplicateKey = errors.New("duplicate key constraint violation")

// Store persists rooms and hands
type Store interface {
	// Tx runs fn in a single transaction
	// The transaction is committed if fn returns nil, and rolled back otherwise.
	Tx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is a unit of work against the store
// Reads with forUpdate lock the row until the transaction ends.
type Tx interface {
	CreateRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id string, forUpdate bool) (*model.Room, error)
	UpdateRoom(ctx context.Context, room *model.Room) error

	AddRoomPlayer(ctx context.Context, rp *model.RoomPlayer) error
	// GetRoomPlayers returns the seated players in seat order
	GetRoomPlayers(ctx context.Context, roomID string) ([]*model.RoomPlayer, error)
	UpdateRoomPlayer(ctx context.Context, rp *model.RoomPlayer) error

	CreateHand(ctx context.Context, hand *model.Hand) error
	GetHand(ctx context.Context, id string, forUpdate bool) (*model.Hand, error)
	// GetLatestHand returns the most recent hand in the room
	GetLatestHand(ctx context.Context, roomID string) (*model.Hand, error)
	UpdateHand(ctx context.Context, hand *model.Hand) error

	CreateHandPlayers(ctx context.Context, players []*model.HandPlayer) error
	// GetHandPlayers returns the players in the hand in seat order
	GetHandPlayers(ctx context.Context, handID string) ([]*model.HandPlayer, error)
	UpdateHandPlayer(ctx context.Context, hp *model.HandPlayer) error

	// AppendAction writes the action with the next sequence number for the hand
	AppendAction(ctx context.Context, a *model.HandAction) error
	// GetActions returns the actions of a hand in sequence order
	// If stage is not nil, only actions taken during that stage are returned.
	GetActions(ctx context.Context, handID string, stage *gamestate.Stage) ([]*model.HandAction, error)
}
