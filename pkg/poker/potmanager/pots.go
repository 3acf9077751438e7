package potmanager

// Pot is an amount of chips and the players who can win it
type Pot struct {
	Amount   int     `json:"amount"`
	Eligible []int64 `json:"eligible"`
}

// IsEligible returns true if the player can win the pot
func (p *Pot) IsEligible(playerID int64) bool {
	for _, id := range p.Eligible {
		if id == playerID {
			return true
		}
	}

	return false
}

// Pots is a collection of pots, main pot first
type Pots []*Pot

// Total returns the combined total of all pots
func (p Pots) Total() int {
	total := 0
	for _, pot := range p {
		total += pot.Amount
	}

	return total
}
