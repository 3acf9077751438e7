package simulator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker"
	"holdem-server/pkg/poker/handanalyzer"
)

func newTestSimulator() *Simulator {
	return New(Options{
		DefaultTrials: 2000,
		MaxTrials:     5000,
		Workers:       3,
		Seed:          42,
	})
}

func request(t *testing.T, hole, community string, opponents, trials int) Request {
	t.Helper()

	return Request{
		HoleCards: deck.CardsFromString(hole),
		Community: deck.CardsFromString(community),
		Opponents: opponents,
		Trials:    trials,
	}
}

func assertProbabilities(t *testing.T, r *Result) {
	t.Helper()

	assert.InDelta(t, 1.0, r.WinProbability+r.TieProbability+r.LossProbability, 1e-9)

	sum := 0.0
	for _, p := range r.HandDistribution {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSimulator_Simulate(t *testing.T) {
	a := assert.New(t)

	res, err := newTestSimulator().Simulate(context.Background(), request(t, "Ah,Ad", "", 1, 0))
	require.NoError(t, err)

	a.Equal(2000, res.TrialCount)
	assertProbabilities(t, res)

	// pocket aces win roughly 85% of the time heads-up
	a.InDelta(0.85, res.WinProbability, 0.05)
	a.Greater(res.HandDistribution[handanalyzer.OnePair], 0.0)
	a.Zero(res.HandDistribution[handanalyzer.HighCard])
}

func TestSimulator_deterministic(t *testing.T) {
	a := assert.New(t)

	req := request(t, "7c,8c", "9c,Td,2h", 3, 1000)
	r1, err := newTestSimulator().Simulate(context.Background(), req)
	require.NoError(t, err)
	r2, err := newTestSimulator().Simulate(context.Background(), req)
	require.NoError(t, err)

	a.Equal(r1, r2)
	assertProbabilities(t, r1)
}

func TestSimulator_completeBoard(t *testing.T) {
	a := assert.New(t)

	// a royal flush on the board means every hand ties
	res, err := newTestSimulator().Simulate(context.Background(), request(t, "2c,3d", "As,Ks,Qs,Js,Ts", 4, 500))
	require.NoError(t, err)

	a.Equal(1.0, res.TieProbability)
	a.Equal(map[handanalyzer.Hand]float64{handanalyzer.RoyalFlush: 1}, res.HandDistribution)

	// the nuts never loses
	res, err = newTestSimulator().Simulate(context.Background(), request(t, "As,Ks", "Qs,Js,Ts,2d,3c", 9, 500))
	require.NoError(t, err)
	a.Equal(1.0, res.WinProbability)
}

func TestSimulator_trialCap(t *testing.T) {
	res, err := newTestSimulator().Simulate(context.Background(), request(t, "2c,7d", "", 2, 1_000_000))
	require.NoError(t, err)
	assert.Equal(t, 5000, res.TrialCount)
}

func TestSimulator_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSimulator().Simulate(ctx, request(t, "2c,7d", "", 2, 0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequest_Validate(t *testing.T) {
	assertCode := func(code poker.Code, r Request) {
		t.Helper()
		assert.Equal(t, code, poker.CodeOf(r.Validate()))
	}

	assertCode("", request(t, "Ah,Kh", "", 1, 0))
	assertCode("", request(t, "Ah,Kh", "2c,3c,4c,5c,6c", 9, 0))
	assertCode(poker.CodeInvalidHoleCards, request(t, "Ah", "", 1, 0))
	assertCode(poker.CodeInvalidHoleCards, request(t, "Ah,Kh,Qh", "", 1, 0))
	assertCode(poker.CodeInvalidCommunityCards, request(t, "Ah,Kh", "2c,3c,4c,5c,6c,7c", 1, 0))
	assertCode(poker.CodeInvalidOpponents, request(t, "Ah,Kh", "", 0, 0))
	assertCode(poker.CodeTooManyOpponents, request(t, "Ah,Kh", "", 10, 0))
	assertCode(poker.CodeDuplicateCards, request(t, "Ah,Kh", "Ah,2c,3c", 1, 0))
	assertCode(poker.CodeDuplicateCards, request(t, "Ah,Ah", "", 1, 0))
	assertCode(poker.CodeInvalidInput, request(t, "Ah,Kh", "", 1, -1))
	assertCode(poker.CodeInvalidCard, Request{HoleCards: []deck.Card{{Rank: 15, Suit: deck.Hearts}, {Rank: 2, Suit: deck.Hearts}}, Opponents: 1})
}

func TestNewRequest(t *testing.T) {
	a := assert.New(t)

	r, err := NewRequest([]string{"Ah", "10d"}, []string{"2c", "3c", "4c"}, 2, 100)
	a.NoError(err)
	a.Equal("Ah,Td", deck.CardsToString(r.HoleCards))
	a.Len(r.Community, 3)

	_, err = NewRequest([]string{"Ah", "1d"}, nil, 2, 100)
	a.Equal(poker.CodeInvalidCard, poker.CodeOf(err))
}

func TestResult_JSON(t *testing.T) {
	a := assert.New(t)

	b, err := json.Marshal(&Result{
		WinProbability:   0.5,
		LossProbability:  0.5,
		HandDistribution: map[handanalyzer.Hand]float64{handanalyzer.TwoPair: 1},
		TrialCount:       2,
	})
	a.NoError(err)
	a.JSONEq(`{"winProbability":0.5,"tieProbability":0,"lossProbability":0.5,"handDistribution":{"TWO_PAIR":1},"trialCount":2}`, string(b))
}
