package handanalyzer

import (
	"sort"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker"
)

// CategoryWeight separates hand categories in a score
// No kicker term can reach it, so a higher category always outscores a lower one.
const CategoryWeight = 1_000_000

// kickerBase is larger than the highest rank so kicker positions never carry
const kickerBase = 15

// Result is the best five-card hand that can be made from a set of cards
type Result struct {
	Hand        Hand        `json:"hand"`
	Cards       []deck.Card `json:"cards"`
	Score       int         `json:"score"`
	Description string      `json:"description"`
}

// combinations holds the five-card index sets for six and seven cards
var combinations = map[int][][5]int{
	6: choose5(6),
	7: choose5(7),
}

func choose5(n int) [][5]int {
	combos := make([][5]int, 0, 21)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					for e := d + 1; e < n; e++ {
						combos = append(combos, [5]int{a, b, c, d, e})
					}
				}
			}
		}
	}

	return combos
}

// Evaluate returns the best hand that can be made from five to seven cards
func Evaluate(cards []deck.Card) (*Result, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return nil, poker.NewError(poker.CodeInvalidInput, "expected 5 to 7 cards, got %d", len(cards))
	}

	for _, c := range cards {
		if !c.IsValid() {
			return nil, poker.NewError(poker.CodeInvalidCard, "invalid card: rank %d, suit %q", c.Rank, string(c.Suit))
		}
	}

	if dup, ok := deck.HasDuplicates(cards); ok {
		return nil, poker.NewError(poker.CodeDuplicateCards, "duplicate card: %s", dup)
	}

	var best *fiveCardHand
	if len(cards) == 5 {
		best = analyze([5]deck.Card{cards[0], cards[1], cards[2], cards[3], cards[4]})
	} else {
		for _, combo := range combinations[len(cards)] {
			h := analyze([5]deck.Card{cards[combo[0]], cards[combo[1]], cards[combo[2]], cards[combo[3]], cards[combo[4]]})
			if best == nil || h.score > best.score {
				best = h
			}
		}
	}

	return &Result{
		Hand:        best.hand,
		Cards:       best.cards[:],
		Score:       best.score,
		Description: describe(best.hand, best.kickers),
	}, nil
}

// MustEvaluate is like Evaluate, but panics on error
func MustEvaluate(cards []deck.Card) *Result {
	r, err := Evaluate(cards)
	if err != nil {
		panic(err)
	}

	return r
}

type fiveCardHand struct {
	hand    Hand
	cards   [5]deck.Card
	kickers []int
	score   int
}

type rankGroup struct {
	rank  int
	count int
}

// analyze classifies exactly five cards
// cards end up in display order: larger groups first, then by rank. A wheel is shown 5-4-3-2-A.
func analyze(cards [5]deck.Card) *fiveCardHand {
	sort.SliceStable(cards[:], func(i, j int) bool {
		return cards[i].Rank > cards[j].Rank
	})

	flush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			flush = false
			break
		}
	}

	groups := make([]rankGroup, 0, 5)
	for _, c := range cards {
		if n := len(groups); n > 0 && groups[n-1].rank == c.Rank {
			groups[n-1].count++
			continue
		}

		groups = append(groups, rankGroup{rank: c.Rank, count: 1})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}

		return groups[i].rank > groups[j].rank
	})

	straightHigh := 0
	if len(groups) == 5 {
		if cards[0].Rank-cards[4].Rank == 4 {
			straightHigh = cards[0].Rank
		} else if cards[0].Rank == deck.Ace && cards[1].Rank == 5 {
			// wheel
			straightHigh = 5
			cards = [5]deck.Card{cards[1], cards[2], cards[3], cards[4], cards[0]}
		}
	}

	h := &fiveCardHand{cards: cards}
	switch {
	case straightHigh > 0 && flush:
		h.hand = StraightFlush
		if straightHigh == deck.Ace {
			h.hand = RoyalFlush
		}
		h.kickers = []int{straightHigh}
	case straightHigh > 0:
		h.hand = Straight
		h.kickers = []int{straightHigh}
	default:
		h.kickers = make([]int, len(groups))
		for i, g := range groups {
			h.kickers[i] = g.rank
		}

		h.hand = classifyGroups(groups, flush)
		h.cards = groupOrder(cards, groups)
	}

	h.score = int(h.hand)*CategoryWeight + kickerTerm(h.kickers)

	return h
}

func classifyGroups(groups []rankGroup, flush bool) Hand {
	switch {
	case groups[0].count == 4:
		return FourOfAKind
	case groups[0].count == 3 && groups[1].count == 2:
		return FullHouse
	case flush:
		return Flush
	case groups[0].count == 3:
		return ThreeOfAKind
	case groups[0].count == 2 && groups[1].count == 2:
		return TwoPair
	case groups[0].count == 2:
		return OnePair
	}

	return HighCard
}

// groupOrder sorts cards so the cards of each group appear in group order
func groupOrder(cards [5]deck.Card, groups []rankGroup) [5]deck.Card {
	var ordered [5]deck.Card
	i := 0
	for _, g := range groups {
		for _, c := range cards {
			if c.Rank == g.rank {
				ordered[i] = c
				i++
			}
		}
	}

	return ordered
}

// kickerTerm encodes the tie-break ranks positionally, most significant first
func kickerTerm(kickers []int) int {
	term := 0
	for _, k := range kickers {
		term = term*kickerBase + k
	}

	return term
}
