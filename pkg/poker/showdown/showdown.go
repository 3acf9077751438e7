package showdown

import (
	"sort"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker"
	"holdem-server/pkg/poker/handanalyzer"
	"holdem-server/pkg/poker/potmanager"
)

// Player is a participant at showdown
type Player struct {
	PlayerID  int64
	Seat      int
	HoleCards []deck.Card
	// Contributed is everything the player bet during the hand
	Contributed int
	Folded      bool
}

// Input is the final state of a hand
type Input struct {
	Players    []Player
	Community  []deck.Card
	DealerSeat int
}

// PotResult is who won a single pot
type PotResult struct {
	potmanager.Pot
	Winners []int64 `json:"winners"`
}

// Result is the outcome of a showdown
type Result struct {
	Pots []PotResult `json:"pots"`
	// Hands holds the best hand for every player who reached showdown
	// It is empty when the pot was uncontested.
	Hands       map[int64]*handanalyzer.Result `json:"hands"`
	Winnings    map[int64]int                  `json:"winnings"`
	Uncontested bool                           `json:"uncontested"`
}

// Resolve awards every pot to the best eligible hand
// Split pots are divided evenly. Odd chips go one at a time to the tied winners,
// in seat order starting left of the dealer.
func Resolve(in Input) (*Result, error) {
	players := payoutOrder(in.Players, in.DealerSeat)

	contributions := make([]potmanager.Contribution, len(players))
	live := make([]Player, 0, len(players))
	for i, p := range players {
		contributions[i] = potmanager.Contribution{
			PlayerID: p.PlayerID,
			Amount:   p.Contributed,
			Folded:   p.Folded,
		}

		if !p.Folded {
			live = append(live, p)
		}
	}

	if len(live) == 0 {
		return nil, poker.NewError(poker.CodeInvariantViolation, "no players remain at showdown")
	}

	result := &Result{
		Hands:       make(map[int64]*handanalyzer.Result),
		Winnings:    make(map[int64]int),
		Uncontested: len(live) == 1,
	}

	wm := potmanager.NewWinManager()
	if result.Uncontested {
		wm.AddPlayer(live[0].PlayerID, 0)
	} else {
		if len(in.Community) != 5 {
			return nil, poker.NewError(poker.CodeInvalidCommunityCards, "expected 5 community cards at showdown, got %d", len(in.Community))
		}

		for _, p := range live {
			if len(p.HoleCards) != 2 {
				return nil, poker.NewError(poker.CodeInvalidHoleCards, "player %d has %d hole cards", p.PlayerID, len(p.HoleCards))
			}

			cards := make([]deck.Card, 0, 7)
			cards = append(cards, p.HoleCards...)
			cards = append(cards, in.Community...)

			hand, err := handanalyzer.Evaluate(cards)
			if err != nil {
				return nil, err
			}

			result.Hands[p.PlayerID] = hand
			wm.AddPlayer(p.PlayerID, hand.Score)
		}
	}

	for _, pot := range potmanager.Calculate(contributions) {
		winners := wm.BestOf(pot.Eligible)
		for id, amount := range potmanager.Split(pot.Amount, winners) {
			result.Winnings[id] += amount
		}

		result.Pots = append(result.Pots, PotResult{
			Pot:     *pot,
			Winners: winners,
		})
	}

	return result, nil
}

// payoutOrder sorts players by seat, starting with the first seat left of the dealer
func payoutOrder(players []Player, dealerSeat int) []Player {
	sorted := make([]Player, len(players))
	copy(sorted, players)

	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := sorted[i].Seat, sorted[j].Seat
		if (si > dealerSeat) != (sj > dealerSeat) {
			return si > dealerSeat
		}

		return si < sj
	})

	return sorted
}
