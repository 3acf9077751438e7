package betting

import (
	"fmt"

	"holdem-server/pkg/poker/action"
)

// Event is a logged action
// Amount is the number of chips the action moved.
type Event struct {
	PlayerID int64         `json:"playerId"`
	Action   action.Action `json:"action"`
	Amount   int           `json:"amount"`
}

// Fold replays the events of a street on top of its starting state
// Deal and settle events carry no betting and are skipped.
func Fold(initial Round, events []Event) (Round, error) {
	r := initial
	for i, e := range events {
		if !e.Action.IsPlayerAction() && !e.Action.IsBlind() {
			continue
		}

		amount := e.Amount
		if e.Action == action.Raise {
			p, ok := r.Player(e.PlayerID)
			if ok {
				amount += p.Bet
			}
		}

		next, err := r.Apply(e.PlayerID, e.Action, amount)
		if err != nil {
			return initial, fmt.Errorf("could not replay event %d (%s by %d): %w", i, e.Action, e.PlayerID, err)
		}

		r = next
	}

	return r, nil
}

// Moved returns the chips the player moved between two states of the same round
func Moved(before, after Round, playerID int64) int {
	b, _ := before.Player(playerID)
	a, _ := after.Player(playerID)
	return a.Bet - b.Bet
}
