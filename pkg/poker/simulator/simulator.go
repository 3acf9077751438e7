package simulator

import (
	"context"

	"golang.org/x/sync/errgroup"
	"holdem-server/internal/rng"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker"
	"holdem-server/pkg/poker/handanalyzer"
)

// DefaultTrials is the number of trials run when a request does not ask for a number
const DefaultTrials = 10_000

// MaxOpponents is the most opponents a hand can be simulated against
const MaxOpponents = 9

// trials between context checks
const batchSize = 250

// Options configures a Simulator
type Options struct {
	DefaultTrials int
	// MaxTrials caps the trials a single request can run
	MaxTrials int
	Workers   int
	// Seed makes simulations repeatable. Zero seeds every run from crypto randomness.
	Seed int64
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		DefaultTrials: DefaultTrials,
		MaxTrials:     100_000,
		Workers:       4,
	}
}

// Simulator estimates a hand's equity by dealing out random boards
type Simulator struct {
	opts Options
}

// New returns a new simulator
func New(opts Options) *Simulator {
	if opts.DefaultTrials <= 0 {
		opts.DefaultTrials = DefaultTrials
	}

	if opts.MaxTrials <= 0 {
		opts.MaxTrials = opts.DefaultTrials
	}

	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	return &Simulator{opts: opts}
}

// Request is a hand to simulate
type Request struct {
	HoleCards []deck.Card `json:"holeCards"`
	Community []deck.Card `json:"communityCards"`
	Opponents int         `json:"numOpponents"`
	// Trials defaults to the simulator's default when zero
	Trials int `json:"trials"`
}

// NewRequest builds a request from card codes
func NewRequest(hole, community []string, opponents, trials int) (Request, error) {
	h, err := deck.ParseCards(hole)
	if err != nil {
		return Request{}, err
	}

	c, err := deck.ParseCards(community)
	if err != nil {
		return Request{}, err
	}

	return Request{
		HoleCards: h,
		Community: c,
		Opponents: opponents,
		Trials:    trials,
	}, nil
}

// Validate returns an error if the request cannot be simulated
func (r Request) Validate() error {
	for _, c := range append(append([]deck.Card{}, r.HoleCards...), r.Community...) {
		if !c.IsValid() {
			return poker.NewError(poker.CodeInvalidCard, "invalid card: rank %d, suit %q", c.Rank, string(c.Suit))
		}
	}

	if len(r.HoleCards) != 2 {
		return poker.NewError(poker.CodeInvalidHoleCards, "expected 2 hole cards, got %d", len(r.HoleCards))
	}

	if len(r.Community) > 5 {
		return poker.NewError(poker.CodeInvalidCommunityCards, "expected at most 5 community cards, got %d", len(r.Community))
	}

	if r.Opponents < 1 {
		return poker.NewError(poker.CodeInvalidOpponents, "at least one opponent is required")
	}

	if r.Opponents > MaxOpponents {
		return poker.NewError(poker.CodeTooManyOpponents, "at most %d opponents are allowed", MaxOpponents)
	}

	if r.Trials < 0 {
		return poker.NewError(poker.CodeInvalidInput, "trials cannot be negative")
	}

	if dup, ok := deck.HasDuplicates(r.HoleCards, r.Community); ok {
		return poker.NewError(poker.CodeDuplicateCards, "%s appears more than once", dup)
	}

	return nil
}

// Result is the estimated equity of a hand
type Result struct {
	WinProbability  float64 `json:"winProbability"`
	TieProbability  float64 `json:"tieProbability"`
	LossProbability float64 `json:"lossProbability"`
	// HandDistribution is how often the hand finished as each category
	HandDistribution map[handanalyzer.Hand]float64 `json:"handDistribution"`
	TrialCount       int                           `json:"trialCount"`
}

type tally struct {
	trials int
	wins   int
	ties   int
	losses int
	hands  map[handanalyzer.Hand]int
}

func newTally() *tally {
	return &tally{hands: make(map[handanalyzer.Hand]int)}
}

func (t *tally) add(o *tally) {
	t.trials += o.trials
	t.wins += o.wins
	t.ties += o.ties
	t.losses += o.losses
	for h, n := range o.hands {
		t.hands[h] += n
	}
}

// Simulate runs the trials across the simulator's workers
func (s *Simulator) Simulate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	trials := req.Trials
	if trials == 0 {
		trials = s.opts.DefaultTrials
	}

	if trials > s.opts.MaxTrials {
		trials = s.opts.MaxTrials
	}

	workers := s.opts.Workers
	if workers > trials {
		workers = trials
	}

	remaining := deck.NewWithout(req.HoleCards, req.Community).Cards
	tallies := make([]*tally, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		n := trials / workers
		if w < trials%workers {
			n++
		}

		g.Go(func() error {
			t, err := s.run(ctx, req, remaining, n, rng.Derive(s.opts.Seed, w))
			tallies[w] = t
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newTally()
	for _, t := range tallies {
		total.add(t)
	}

	return total.result(), nil
}

func (t *tally) result() *Result {
	r := &Result{
		HandDistribution: make(map[handanalyzer.Hand]float64, len(t.hands)),
		TrialCount:       t.trials,
	}

	if t.trials == 0 {
		return r
	}

	n := float64(t.trials)
	r.WinProbability = float64(t.wins) / n
	r.TieProbability = float64(t.ties) / n
	r.LossProbability = float64(t.losses) / n
	for h, count := range t.hands {
		r.HandDistribution[h] = float64(count) / n
	}

	return r
}

// run plays n trials on a single goroutine
func (s *Simulator) run(ctx context.Context, req Request, remaining []deck.Card, n int, gen rng.Generator) (*tally, error) {
	t := newTally()

	d := &deck.Deck{Cards: make([]deck.Card, len(remaining))}
	board := make([]deck.Card, 5)
	copy(board, req.Community)
	missing := 5 - len(req.Community)

	hero := make([]deck.Card, 7)
	copy(hero, req.HoleCards)
	villain := make([]deck.Card, 7)

	for i := 0; i < n; i++ {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return t, err
			}
		}

		d.Cards = d.Cards[:len(remaining)]
		copy(d.Cards, remaining)
		d.Shuffle(gen)

		dealt := d.Cards
		copy(board[len(req.Community):], dealt[:missing])
		dealt = dealt[missing:]

		copy(hero[2:], board)
		heroHand, err := handanalyzer.Evaluate(hero)
		if err != nil {
			return t, err
		}

		best := 0
		for o := 0; o < req.Opponents; o++ {
			villain[0], villain[1] = dealt[0], dealt[1]
			dealt = dealt[2:]
			copy(villain[2:], board)

			h, err := handanalyzer.Evaluate(villain)
			if err != nil {
				return t, err
			}

			if h.Score > best {
				best = h.Score
			}
		}

		t.trials++
		t.hands[heroHand.Hand]++
		switch {
		case heroHand.Score > best:
			t.wins++
		case heroHand.Score == best:
			t.ties++
		default:
			t.losses++
		}
	}

	return t, nil
}
