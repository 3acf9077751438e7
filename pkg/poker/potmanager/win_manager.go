package potmanager

import (
	"sort"
)

type tier struct {
	score     int
	playerIDs []int64
}

// WinManager groups players by hand score
type WinManager map[int]*tier

// NewWinManager returns a new WinManager
func NewWinManager() WinManager {
	return make(WinManager)
}

// AddPlayer records a player's hand score
func (w WinManager) AddPlayer(playerID int64, score int) {
	t, ok := w[score]
	if !ok {
		t = &tier{
			score:     score,
			playerIDs: make([]int64, 0, 1),
		}
		w[score] = t
	}

	t.playerIDs = append(t.playerIDs, playerID)
}

// GetSortedTiers returns the players grouped by score, best score first
func (w WinManager) GetSortedTiers() [][]int64 {
	tiers := make([]*tier, 0, len(w))
	for _, t := range w {
		tiers = append(tiers, t)
	}

	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].score > tiers[j].score
	})

	sorted := make([][]int64, len(tiers))
	for i, t := range tiers {
		sorted[i] = t.playerIDs
	}

	return sorted
}

// BestOf returns the best-scoring players among the candidates
// Candidates without a recorded score are ignored. Order of candidates is preserved.
func (w WinManager) BestOf(candidates []int64) []int64 {
	in := make(map[int64]bool, len(candidates))
	for _, id := range candidates {
		in[id] = true
	}

	for _, ids := range w.GetSortedTiers() {
		found := make(map[int64]bool)
		for _, id := range ids {
			if in[id] {
				found[id] = true
			}
		}

		if len(found) == 0 {
			continue
		}

		best := make([]int64, 0, len(found))
		for _, id := range candidates {
			if found[id] {
				best = append(best, id)
			}
		}

		return best
	}

	return nil
}
