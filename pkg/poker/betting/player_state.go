package betting

// PlayerState is a player's position in a single betting round
type PlayerState struct {
	PlayerID int64 `json:"playerId"`
	Seat     int   `json:"seat"`
	Chips    int   `json:"chips"`
	Bet      int   `json:"bet"`
	Folded   bool  `json:"folded"`
	AllIn    bool  `json:"allIn"`
	HasActed bool  `json:"hasActed"`
}

// CanAct returns true if the player can still check, call, raise, or fold
func (p PlayerState) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// Total returns the chips the player had at the start of the round
func (p PlayerState) Total() int {
	return p.Chips + p.Bet
}

// move moves chips from the player's stack to their bet
// the amount is capped at the player's stack. Returns the chips moved.
func (p *PlayerState) move(amount int) int {
	if amount >= p.Chips {
		amount = p.Chips
	}

	if amount < 0 {
		amount = 0
	}

	p.Chips -= amount
	p.Bet += amount
	if p.Chips == 0 {
		p.AllIn = true
	}

	return amount
}
