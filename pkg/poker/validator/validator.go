package validator

import (
	"holdem-server/pkg/poker"
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/gamestate"
)

// Request is an action a player wants to take, along with what the table looks like
type Request struct {
	Stage    gamestate.Stage
	PlayerID int64
	Action   action.Action
	// Amount is the target bet for a raise
	Amount int

	// InHand is false if the player was not dealt into the hand
	InHand bool
	Status gamestate.Status
	// CurrentPlayerID is whose turn it is, or zero if nobody can act
	CurrentPlayerID int64

	CurrentBet int
	PlayerBet  int
	MinRaise   int
}

// Validate returns an error if the player may not take the action
// Chip math, such as whether the player can afford a raise, is left to the betting round.
func Validate(r Request) error {
	if !r.Action.IsPlayerAction() {
		return poker.NewError(poker.CodeInvalidActionType, "%q is not an action a player can take", string(r.Action))
	}

	if !r.Stage.IsBetting() {
		return poker.NewError(poker.CodeInvalidHandState, "the hand is not accepting actions during %s", r.Stage)
	}

	if !r.InHand {
		return poker.NewError(poker.CodeNotInHand, "you are not in this hand")
	}

	if r.Status != gamestate.Active {
		return poker.NewError(poker.CodePlayerCannotAct, "you cannot act while %s", r.Status)
	}

	if r.CurrentPlayerID != r.PlayerID {
		return poker.NewError(poker.CodeNotYourTurn, "it is not your turn")
	}

	switch r.Action {
	case action.Call:
		if r.CurrentBet <= r.PlayerBet {
			return poker.NewError(poker.CodeNothingToCall, "there is no bet to call")
		}
	case action.Raise:
		if r.Amount <= 0 {
			return poker.NewError(poker.CodeInvalidRaiseAmount, "raise amount must be positive")
		}

		if r.Amount <= r.CurrentBet {
			return poker.NewError(poker.CodeRaiseTooLow, "your raise of ${%d} must be greater than the current bet of ${%d}", r.Amount, r.CurrentBet)
		}

		if r.Amount-r.CurrentBet < r.MinRaise {
			return poker.NewError(poker.CodeRaiseTooSmall, "your raise must be at least ${%d}", r.CurrentBet+r.MinRaise)
		}
	}

	return nil
}
