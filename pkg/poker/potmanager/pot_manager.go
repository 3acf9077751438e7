package potmanager

import (
	"sort"
)

// Contribution is everything a player has put into the hand
// Folded players still contribute chips, but they cannot win any pot.
type Contribution struct {
	PlayerID int64
	Amount   int
	Folded   bool
}

// Calculate splits the contributions into a main pot and side pots
// Contributions should be in seat order. Eligibility lists follow that order.
func Calculate(contributions []Contribution) Pots {
	live := make([]int64, 0, len(contributions))
	betting := make([]Contribution, 0, len(contributions))
	for _, c := range contributions {
		if !c.Folded {
			live = append(live, c.PlayerID)
		}

		if c.Amount > 0 {
			betting = append(betting, c)
		}
	}

	if len(betting) == 0 {
		return Pots{}
	}

	levels := make([]int, 0, len(betting))
	seen := make(map[int]bool)
	for _, c := range betting {
		if !seen[c.Amount] {
			seen[c.Amount] = true
			levels = append(levels, c.Amount)
		}
	}
	sort.Ints(levels)

	pots := make(Pots, 0, len(levels))
	prevLevel := 0
	for _, level := range levels {
		pot := &Pot{}
		contributors := 0
		for _, c := range betting {
			if c.Amount < level {
				continue
			}

			contributors++
			if !c.Folded {
				pot.Eligible = append(pot.Eligible, c.PlayerID)
			}
		}

		pot.Amount = (level - prevLevel) * contributors
		prevLevel = level

		// nobody left in the hand reached this level, so the chips fall back to the pot below
		if len(pot.Eligible) == 0 {
			if len(pots) > 0 {
				pots[len(pots)-1].Amount += pot.Amount
				continue
			}

			pot.Eligible = append(pot.Eligible, live...)
		}

		pots = append(pots, pot)
	}

	return pots
}

// Split divides an amount evenly between winners
// Winners must already be in payout order. Any odd chips go one at a time from the front.
func Split(amount int, winners []int64) map[int64]int {
	payouts := make(map[int64]int, len(winners))
	if len(winners) == 0 {
		return payouts
	}

	share := amount / len(winners)
	remainder := amount % len(winners)
	for i, id := range winners {
		payouts[id] += share
		if i < remainder {
			payouts[id]++
		}
	}

	return payouts
}
