package betting

import (
	"holdem-server/pkg/poker"
	"holdem-server/pkg/poker/action"
)

// Round is the betting state of one street
// A Round is a value. Apply returns a new Round and never changes the receiver.
type Round struct {
	// Players are in clockwise seat order
	Players       []PlayerState `json:"players"`
	CurrentBet    int           `json:"currentBet"`
	MinRaise      int           `json:"minRaise"`
	LastAggressor int64         `json:"lastAggressor"`
	// LastActor is the index of the player who acted last, or -1
	LastActor int `json:"lastActor"`
}

// Start describes the state of a street before anyone acts
type Start struct {
	Players    []PlayerState
	CurrentBet int
	MinRaise   int
	// ActionAfter is the player to the right of the first to act, i.e., the dealer
	ActionAfter int64
}

// New returns a new round
func New(s Start) Round {
	players := make([]PlayerState, len(s.Players))
	copy(players, s.Players)

	r := Round{
		Players:    players,
		CurrentBet: s.CurrentBet,
		MinRaise:   s.MinRaise,
		LastActor:  -1,
	}

	if i := r.indexOf(s.ActionAfter); i >= 0 {
		r.LastActor = i
	}

	return r
}

func (r Round) clone() Round {
	players := make([]PlayerState, len(r.Players))
	copy(players, r.Players)
	r.Players = players
	return r
}

func (r Round) indexOf(playerID int64) int {
	for i, p := range r.Players {
		if p.PlayerID == playerID {
			return i
		}
	}

	return -1
}

// Player returns the state of a player
func (r Round) Player(playerID int64) (PlayerState, bool) {
	if i := r.indexOf(playerID); i >= 0 {
		return r.Players[i], true
	}

	return PlayerState{}, false
}

// ToCall returns the amount the player needs to put in to match the current bet
func (r Round) ToCall(playerID int64) int {
	p, ok := r.Player(playerID)
	if !ok || p.Bet >= r.CurrentBet {
		return 0
	}

	return r.CurrentBet - p.Bet
}

// ActiveCount returns the number of players who are neither folded nor all-in
func (r Round) ActiveCount() int {
	n := 0
	for _, p := range r.Players {
		if p.CanAct() {
			n++
		}
	}

	return n
}

// NonFoldedCount returns the number of players still in the hand
func (r Round) NonFoldedCount() int {
	n := 0
	for _, p := range r.Players {
		if !p.Folded {
			n++
		}
	}

	return n
}

// TotalBet returns the chips bet on this street
func (r Round) TotalBet() int {
	total := 0
	for _, p := range r.Players {
		total += p.Bet
	}

	return total
}

func (r Round) needsAction(p PlayerState) bool {
	return p.CanAct() && (!p.HasActed || p.Bet < r.CurrentBet)
}

// IsComplete returns true if no more betting can happen on this street
func (r Round) IsComplete() bool {
	for _, p := range r.Players {
		if r.needsAction(p) {
			return false
		}
	}

	return true
}

// NextPlayer returns the next player to act, clockwise from the last actor
// Returns false if the round is complete
func (r Round) NextPlayer() (PlayerState, bool) {
	n := len(r.Players)
	for i := 1; i <= n; i++ {
		p := r.Players[(r.LastActor+i+n)%n]
		if r.needsAction(p) {
			return p, true
		}
	}

	return PlayerState{}, false
}

// IsValidAction returns an error if the player cannot take the action
// For a raise, amount is the player's total bet for the street after raising.
// Turn order is not checked here.
func (r Round) IsValidAction(playerID int64, act action.Action, amount int) error {
	p, ok := r.Player(playerID)
	if !ok {
		return poker.NewError(poker.CodeNotInHand, "player %d is not in this round", playerID)
	}

	if act.IsBlind() {
		if p.Chips <= 0 {
			return poker.NewError(poker.CodePlayerCannotAct, "player %d has no chips to post", playerID)
		}

		return nil
	}

	if !act.IsPlayerAction() {
		return poker.NewError(poker.CodeInvalidActionType, "%s is not a betting action", string(act))
	}

	if !p.CanAct() {
		return poker.NewError(poker.CodePlayerCannotAct, "player %d cannot act", playerID)
	}

	toCall := r.CurrentBet - p.Bet
	switch act {
	case action.Fold:
		return nil
	case action.Check:
		if toCall > 0 {
			return poker.NewError(poker.CodeInvalidAction, "you cannot check with an active bet")
		}
	case action.Call:
		if toCall <= 0 {
			return poker.NewError(poker.CodeNothingToCall, "you cannot call without an active bet")
		}
	case action.Raise:
		return r.validateRaise(p, amount)
	case action.AllIn:
		if p.Chips <= 0 {
			return poker.NewError(poker.CodeInvalidAction, "you have no chips")
		}
	}

	return nil
}

func (r Round) validateRaise(p PlayerState, amount int) error {
	if amount <= 0 {
		return poker.NewError(poker.CodeInvalidRaiseAmount, "raise amount must be positive")
	}

	if p.HasActed {
		return poker.NewError(poker.CodeInvalidAction, "betting was not reopened, you may only call or fold")
	}

	if amount <= r.CurrentBet {
		return poker.NewError(poker.CodeRaiseTooLow, "your raise of ${%d} must be greater than the current bet of ${%d}", amount, r.CurrentBet)
	}

	if amount-r.CurrentBet < r.MinRaise {
		return poker.NewError(poker.CodeRaiseTooSmall, "your raise must be at least ${%d}", r.CurrentBet+r.MinRaise)
	}

	if amount-p.Bet > p.Chips {
		return poker.NewError(poker.CodeInvalidRaiseAmount, "your raise of ${%d} exceeds your stack", amount)
	}

	if p.Chips <= r.CurrentBet-p.Bet {
		return poker.NewError(poker.CodeInvalidRaiseAmount, "you do not have enough chips to raise")
	}

	return nil
}

// Apply returns the round after the player takes the action
// For a raise, amount is the target bet. For a blind, amount is the blind size.
func (r Round) Apply(playerID int64, act action.Action, amount int) (Round, error) {
	if err := r.IsValidAction(playerID, act, amount); err != nil {
		return r, err
	}

	next := r.clone()
	i := next.indexOf(playerID)
	p := &next.Players[i]

	switch act {
	case action.SmallBlind, action.BigBlind:
		p.move(amount)
		if p.Bet > next.CurrentBet {
			next.CurrentBet = p.Bet
		}
	case action.Fold:
		p.Folded = true
		p.HasActed = true
	case action.Check:
		p.HasActed = true
	case action.Call:
		p.move(next.CurrentBet - p.Bet)
		p.HasActed = true
	case action.Raise:
		p.move(amount - p.Bet)
		p.HasActed = true
		next.raiseTo(i, p.Bet)
	case action.AllIn:
		p.move(p.Chips)
		p.HasActed = true
		if p.Bet > next.CurrentBet {
			if p.Bet-next.CurrentBet >= next.MinRaise {
				next.raiseTo(i, p.Bet)
			} else {
				// short all-in: the others must match it, but betting is not reopened
				next.CurrentBet = p.Bet
			}
		}
	}

	next.LastActor = i
	return next, nil
}

// raiseTo records a full raise and reopens betting for everyone else
func (r *Round) raiseTo(raiser int, bet int) {
	r.MinRaise = bet - r.CurrentBet
	r.CurrentBet = bet
	r.LastAggressor = r.Players[raiser].PlayerID

	for j := range r.Players {
		if j != raiser && r.Players[j].CanAct() {
			r.Players[j].HasActed = false
		}
	}
}
