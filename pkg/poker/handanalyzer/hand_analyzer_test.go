package handanalyzer

import (
	"math/rand"
	"testing"

	ph "github.com/paulhankin/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker"
)

func evaluate(t *testing.T, cards string) *Result {
	t.Helper()

	r, err := Evaluate(deck.CardsFromString(cards))
	require.NoError(t, err)
	return r
}

func TestEvaluate_categories(t *testing.T) {
	assertHand := func(cards string, hand Hand, best string) {
		t.Helper()

		r := evaluate(t, cards)
		assert.Equal(t, hand, r.Hand, cards)
		assert.Equal(t, best, deck.CardsToString(r.Cards), cards)
	}

	assertHand("As,Ks,Qs,Js,Ts", RoyalFlush, "As,Ks,Qs,Js,Ts")
	assertHand("9h,Kh,Qh,Jh,Th", StraightFlush, "Kh,Qh,Jh,Th,9h")
	assertHand("Ac,2c,3c,4c,5c", StraightFlush, "5c,4c,3c,2c,Ac")
	assertHand("4s,4h,5c,4d,4c", FourOfAKind, "4s,4h,4d,4c,5c")
	assertHand("2c,Kd,2h,Kh,Ks", FullHouse, "Kd,Kh,Ks,2c,2h")
	assertHand("2d,9d,Jd,4d,Ad", Flush, "Ad,Jd,9d,4d,2d")
	assertHand("6c,7d,8h,9s,Tc", Straight, "Tc,9s,8h,7d,6c")
	assertHand("Ah,2d,3c,4s,5h", Straight, "5h,4s,3c,2d,Ah")
	assertHand("7c,7d,7h,Ks,2c", ThreeOfAKind, "7c,7d,7h,Ks,2c")
	assertHand("9c,9d,4h,4s,Ac", TwoPair, "9c,9d,4h,4s,Ac")
	assertHand("Jc,Jd,4h,8s,Ac", OnePair, "Jc,Jd,Ac,8s,4h")
	assertHand("Jc,2d,4h,8s,Ac", HighCard, "Ac,Jc,8s,4h,2d")
}

func TestEvaluate_scores(t *testing.T) {
	a := assert.New(t)

	a.Equal(int(StraightFlush)*CategoryWeight+5, evaluate(t, "Ac,2c,3c,4c,5c").Score)
	a.Equal(int(RoyalFlush)*CategoryWeight+14, evaluate(t, "As,Ks,Qs,Js,Ts").Score)
	a.Equal(int(FullHouse)*CategoryWeight+13*15+2, evaluate(t, "2c,Kd,2h,Kh,Ks").Score)

	// wheel sits between high card and a six-high straight
	wheel := evaluate(t, "Ah,2d,3c,4s,5h").Score
	a.Less(evaluate(t, "Ah,Kd,Qc,Js,9h").Score, wheel)
	a.Less(wheel, evaluate(t, "2h,3d,4c,5s,6h").Score)

	// suits never change a score
	a.Equal(evaluate(t, "Ah,Kh,7d,7c,2s").Score, evaluate(t, "As,Kd,7h,7s,2c").Score)

	// worst hand of a category beats the best hand of the category below it
	a.Less(evaluate(t, "As,Ks,Qs,Js,9d").Score, evaluate(t, "2c,2d,3h,4s,5c").Score)
	a.Less(evaluate(t, "Ac,Ad,Kh,Qs,Jc").Score, evaluate(t, "2c,2d,3h,3s,4c").Score)
	a.Less(evaluate(t, "Ac,Kd,Ah,Ks,Qc").Score, evaluate(t, "2c,2d,2h,3s,4c").Score)
	a.Less(evaluate(t, "Ac,Ad,Ah,Ks,Qc").Score, evaluate(t, "Ac,2d,3h,4s,5c").Score)
	a.Less(evaluate(t, "Ac,Kd,Qh,Js,Tc").Score, evaluate(t, "2c,3c,4c,5c,7c").Score)
	a.Less(evaluate(t, "Ac,Kc,Qc,Jc,9c").Score, evaluate(t, "2c,2d,2h,3s,3c").Score)
	a.Less(evaluate(t, "Ac,Ad,Ah,Ks,Kc").Score, evaluate(t, "2c,2d,2h,2s,3c").Score)
	a.Less(evaluate(t, "Ac,Ad,Ah,As,Kc").Score, evaluate(t, "Ac,2c,3c,4c,5c").Score)
}

func TestEvaluate_sevenCards(t *testing.T) {
	a := assert.New(t)

	r := evaluate(t, "Ah,Ad,Kh,Kd,Qh,Qd,2c")
	a.Equal(TwoPair, r.Hand)
	a.Equal("Ah,Ad,Kh,Kd,Qh", deck.CardsToString(r.Cards))
	a.Equal("Two pair, Aces and Kings", r.Description)
	a.Equal(int(TwoPair)*CategoryWeight+14*225+13*15+12, r.Score)

	r = evaluate(t, "3c,3d,3h,4c,4d,4h,5c")
	a.Equal(FullHouse, r.Hand)
	a.Equal("Full house, Fours full of Threes", r.Description)

	r = evaluate(t, "2h,3h,4h,5h,6h,7h,As")
	a.Equal(StraightFlush, r.Hand)
	a.Equal("7h,6h,5h,4h,3h", deck.CardsToString(r.Cards))

	r = evaluate(t, "Ah,Kh,2c,3d,4s,5h,9c")
	a.Equal(Straight, r.Hand)
	a.Equal("Straight, Five high", r.Description)

	r = evaluate(t, "Ah,Kh,2c,3d,4s,5h")
	a.Equal(Straight, r.Hand)
}

func TestEvaluate_descriptions(t *testing.T) {
	a := assert.New(t)

	a.Equal("Royal flush", evaluate(t, "As,Ks,Qs,Js,Ts").Description)
	a.Equal("Straight flush, Nine high", evaluate(t, "9h,8h,7h,6h,5h").Description)
	a.Equal("Four of a kind, Sixes", evaluate(t, "6h,6d,6c,6s,5h").Description)
	a.Equal("Flush, Queen high", evaluate(t, "Qh,8h,7h,3h,2h").Description)
	a.Equal("Three of a kind, Tens", evaluate(t, "Th,Td,Tc,3h,2h").Description)
	a.Equal("Pair of Jacks", evaluate(t, "Jh,Jd,Tc,3h,2h").Description)
	a.Equal("High card, King", evaluate(t, "Kh,Jd,Tc,3h,2h").Description)
}

func TestEvaluate_errors(t *testing.T) {
	a := assert.New(t)

	_, err := Evaluate(deck.CardsFromString("Ah,Kh,Qh,Jh"))
	a.Equal(poker.CodeInvalidInput, poker.CodeOf(err))

	_, err = Evaluate(deck.CardsFromString("Ah,Kh,Qh,Jh,Th,9h,8h,7h"))
	a.Equal(poker.CodeInvalidInput, poker.CodeOf(err))

	_, err = Evaluate(deck.CardsFromString("Ah,Kh,Qh,Jh,Ah"))
	a.Equal(poker.CodeDuplicateCards, poker.CodeOf(err))

	_, err = Evaluate([]deck.Card{{Rank: 1, Suit: deck.Hearts}, {Rank: 2, Suit: deck.Hearts}, {Rank: 3, Suit: deck.Hearts}, {Rank: 4, Suit: deck.Hearts}, {Rank: 5, Suit: deck.Clubs}})
	a.Equal(poker.CodeInvalidCard, poker.CodeOf(err))

	a.Panics(func() {
		MustEvaluate(nil)
	})
}

func toOracle(t *testing.T, c deck.Card) ph.Card {
	t.Helper()

	suits := map[deck.Suit]ph.Suit{
		deck.Clubs:    ph.Club,
		deck.Diamonds: ph.Diamond,
		deck.Hearts:   ph.Heart,
		deck.Spades:   ph.Spade,
	}

	rank := c.Rank
	if rank == deck.Ace {
		rank = 1
	}

	card, err := ph.MakeCard(suits[c.Suit], ph.Rank(rank))
	require.NoError(t, err)
	return card
}

func oracle(t *testing.T, cards []deck.Card) int16 {
	t.Helper()

	var hand [7]ph.Card
	for i, c := range cards {
		hand[i] = toOracle(t, c)
	}

	return ph.Eval7(&hand)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}

	return 0
}

// compares our ordering of random seven-card hands against an independent evaluator
func TestEvaluate_matchesOracle(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		d := deck.New()
		d.Shuffle(r)
		cards, err := d.Deal(14)
		require.NoError(t, err)

		h1, h2 := cards[:7], cards[7:]
		ours := sign(MustEvaluate(h1).Score - MustEvaluate(h2).Score)
		theirs := sign(int(oracle(t, h1)) - int(oracle(t, h2)))

		if !assert.Equal(t, theirs, ours, "%s vs %s", deck.CardsToString(h1), deck.CardsToString(h2)) {
			return
		}
	}
}

func TestHand_JSON(t *testing.T) {
	a := assert.New(t)

	b, err := TwoPair.MarshalJSON()
	a.NoError(err)
	a.Equal(`"TWO_PAIR"`, string(b))

	var h Hand
	a.NoError(h.UnmarshalJSON([]byte(`"ROYAL_FLUSH"`)))
	a.Equal(RoyalFlush, h)
	a.Error(h.UnmarshalJSON([]byte(`"NOPE"`)))

	a.Equal("Two pair", TwoPair.String())
	a.Panics(func() {
		_ = Hand(0).String()
	})
}
