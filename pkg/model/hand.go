package model

import (
	"time"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/gamestate"
)

// Hand is a record in the `hands` table
type Hand struct {
	ID             string          `json:"id"`
	RoomID         string          `json:"roomId"`
	HandNumber     int             `json:"handNumber"`
	DealerSeat     int             `json:"dealerSeat"`
	SmallBlind     int             `json:"smallBlind"`
	BigBlind       int             `json:"bigBlind"`
	Stage          gamestate.Stage `json:"stage"`
	CommunityCards []deck.Card     `json:"communityCards"`
	Pot            int             `json:"pot"`
	StartedAt      time.Time       `json:"startedAt"`
	EndedAt        *time.Time      `json:"endedAt"`
}

// IsComplete returns true once the hand has been settled
func (h *Hand) IsComplete() bool {
	return h.EndedAt != nil
}

// HandPlayer is a record in the `hand_players` table
type HandPlayer struct {
	HandID    string           `json:"handId"`
	PlayerID  int64            `json:"playerId"`
	Seat      int              `json:"seat"`
	HoleCards []deck.Card      `json:"holeCards,omitempty"`
	Status    gamestate.Status `json:"status"`
	// TotalBet is everything the player has bet during the hand
	TotalBet  int    `json:"totalBet"`
	AmountWon int    `json:"amountWon"`
	BestHand  string `json:"bestHand,omitempty"`
}

// IsFolded returns true if the player can no longer win the hand
func (h *HandPlayer) IsFolded() bool {
	return h.Status == gamestate.Folded || h.Status == gamestate.Out
}

// HandAction is a record in the `hand_actions` table
// Actions are never updated once written.
type HandAction struct {
	HandID   string        `json:"handId"`
	Sequence int           `json:"sequence"`
	PlayerID int64         `json:"playerId,omitempty"`
	Action   action.Action `json:"action"`
	// Amount is the number of chips the action moved
	Amount  int             `json:"amount"`
	Stage   gamestate.Stage `json:"stage"`
	Cards   []deck.Card     `json:"cards,omitempty"`
	Created time.Time       `json:"created"`
}
