package action

import (
	"fmt"

	"holdem-server/pkg/poker"
)

// Action represents an entry in a hand's action log
type Action string

// player actions
const (
	Fold  Action = "FOLD"
	Check Action = "CHECK"
	Call  Action = "CALL"
	Raise Action = "RAISE"
	AllIn Action = "ALL_IN"
)

// system actions are recorded by the dealer, never submitted by a player
const (
	SmallBlind Action = "SMALL_BLIND"
	BigBlind   Action = "BIG_BLIND"
	Deal       Action = "DEAL"
	Settle     Action = "SETTLE"
)

var playerActions = map[Action]bool{
	Fold:  true,
	Check: true,
	Call:  true,
	Raise: true,
	AllIn: true,
}

var systemActions = map[Action]bool{
	SmallBlind: true,
	BigBlind:   true,
	Deal:       true,
	Settle:     true,
}

// FromString returns a player action for the given string
func FromString(s string) (Action, error) {
	if a := Action(s); a.IsPlayerAction() {
		return a, nil
	}

	return "", poker.NewError(poker.CodeInvalidActionType, "unknown action: %s", s)
}

// IsPlayerAction returns true if a player may submit the action
func (a Action) IsPlayerAction() bool {
	return playerActions[a]
}

// IsBlind returns true for a forced bet
func (a Action) IsBlind() bool {
	return a == SmallBlind || a == BigBlind
}

// IsValid returns true if the action can appear in an action log
func (a Action) IsValid() bool {
	return playerActions[a] || systemActions[a]
}

func (a Action) String() string {
	switch a {
	case Fold:
		return "Fold"
	case Check:
		return "Check"
	case Call:
		return "Call"
	case Raise:
		return "Raise"
	case AllIn:
		return "All-in"
	case SmallBlind:
		return "Small blind"
	case BigBlind:
		return "Big blind"
	case Deal:
		return "Deal"
	case Settle:
		return "Settle"
	}

	panic(fmt.Sprintf("unknown action: %s", string(a)))
}

// LogMessage returns a message formatted for the log
// amount is the number of chips the action moved
func (a Action) LogMessage(amount int) string {
	switch a {
	case Fold:
		return "folded"
	case Check:
		return "checked"
	case Call:
		return fmt.Sprintf("called ${%d}", amount)
	case Raise:
		return fmt.Sprintf("raised ${%d}", amount)
	case AllIn:
		return fmt.Sprintf("went all-in for ${%d}", amount)
	case SmallBlind:
		return fmt.Sprintf("posted the small blind of ${%d}", amount)
	case BigBlind:
		return fmt.Sprintf("posted the big blind of ${%d}", amount)
	case Deal:
		return "dealt"
	case Settle:
		return "settled the hand"
	}

	return ""
}
