package model

import (
	"time"
)

// RoomStatus is the status of a room
type RoomStatus string

// RoomStatus constants
const (
	RoomStatusWaiting    RoomStatus = "WAITING"
	RoomStatusInProgress RoomStatus = "IN_PROGRESS"
)

// Room is a record in the `rooms` table
type Room struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	SmallBlind int        `json:"smallBlind"`
	BigBlind   int        `json:"bigBlind"`
	MaxPlayers int        `json:"maxPlayers"`
	Status     RoomStatus `json:"status"`
	// DealerSeat is the dealer of the most recent hand, or -1 before the first hand
	DealerSeat int       `json:"dealerSeat"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
}

// RoomPlayerStatus is the status of a seated player
type RoomPlayerStatus string

// RoomPlayerStatus constants
const (
	RoomPlayerStatusActive     RoomPlayerStatus = "ACTIVE"
	RoomPlayerStatusSittingOut RoomPlayerStatus = "SITTING_OUT"
)

// RoomPlayer is a record in the `room_players` table
type RoomPlayer struct {
	RoomID   string           `json:"roomId"`
	PlayerID int64            `json:"playerId"`
	Seat     int              `json:"seat"`
	Chips    int              `json:"chips"`
	Status   RoomPlayerStatus `json:"status"`
	Created  time.Time        `json:"created"`
	Updated  time.Time        `json:"updated"`
}

// IsPlaying returns true if the player should be dealt into the next hand
func (r *RoomPlayer) IsPlaying() bool {
	return r.Status == RoomPlayerStatusActive && r.Chips > 0
}
