package handmanager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"holdem-server/internal/rng"
	"holdem-server/pkg/cache"
	"holdem-server/pkg/events"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker"
	"holdem-server/pkg/store"
)

// Manager runs hands of Texas Hold'em against a store
// Actions on the same hand are applied one at a time, in the order they arrive.
type Manager struct {
	store     store.Store
	logger    logrus.FieldLogger
	random    rng.Generator
	cache     cache.RoundCache
	publisher events.Publisher
	now       func() time.Time

	handLocks *keyedMutex
	roomLocks *keyedMutex
}

// Option configures a Manager
type Option func(m *Manager)

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithGenerator sets the random number generator used to shuffle
func WithGenerator(gen rng.Generator) Option {
	return func(m *Manager) {
		m.random = gen
	}
}

// WithCache sets the cache for rebuilt betting rounds
func WithCache(c cache.RoundCache) Option {
	return func(m *Manager) {
		m.cache = c
	}
}

// WithPublisher sets where applied actions are announced
func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithClock sets the clock used for hand timestamps
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New returns a new manager
func New(s store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  s,
		logger: logrus.StandardLogger(),
		random: rng.Crypto{},
		cache:  cache.Nop{},
		now: func() time.Time {
			return time.Now().UTC()
		},
		handLocks: newKeyedMutex(),
		roomLocks: newKeyedMutex(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.publisher == nil {
		m.publisher = events.NewLogPublisher(m.logger)
	}

	m.random = &lockedGenerator{gen: m.random}
	return m
}

// lockedGenerator lets hands in different rooms share one generator
type lockedGenerator struct {
	mu  sync.Mutex
	gen rng.Generator
}

func (l *lockedGenerator) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.gen.Intn(n)
}

// State is a hand along with its players and action log
type State struct {
	Hand    *model.Hand         `json:"hand"`
	Players []*model.HandPlayer `json:"players"`
	Actions []*model.HandAction `json:"actions"`
	// CurrentPlayerID is whose turn it is, or zero if nobody can act
	CurrentPlayerID int64 `json:"currentPlayerId"`
}

// GetHand returns the hand with its players and every action taken so far
// Hole cards are included for every player. Use State.ViewFor before handing it to a player.
func (m *Manager) GetHand(ctx context.Context, handID string) (*State, error) {
	unlock := m.handLocks.Lock(handID)
	defer unlock()

	var state *State
	err := m.store.Tx(ctx, func(tx store.Tx) error {
		hc, err := m.load(ctx, tx, handID, false)
		if err != nil {
			return err
		}

		actions, err := tx.GetActions(ctx, handID, nil)
		if err != nil {
			return err
		}

		state = &State{
			Hand:            hc.hand,
			Players:         hc.players,
			Actions:         actions,
			CurrentPlayerID: hc.currentPlayerID(),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}

// GetCurrentPlayerID returns whose turn it is
// Returns false if nobody can act, i.e., the hand is over.
func (m *Manager) GetCurrentPlayerID(ctx context.Context, handID string) (int64, bool, error) {
	unlock := m.handLocks.Lock(handID)
	defer unlock()

	var playerID int64
	err := m.store.Tx(ctx, func(tx store.Tx) error {
		hc, err := m.load(ctx, tx, handID, false)
		if err != nil {
			return err
		}

		playerID = hc.currentPlayerID()
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	return playerID, playerID != 0, nil
}

// afterCommit publishes the recorded actions and caches the betting round
// Failures here are logged. The hand has already been saved.
func (m *Manager) afterCommit(ctx context.Context, hc *handContext) {
	for _, a := range hc.recorded {
		if err := m.publisher.Publish(ctx, a); err != nil {
			hc.logger.WithError(err).WithField("sequence", a.Sequence).Warn("could not publish action")
		}
	}

	if hc.hand.Stage.IsBetting() && hc.version > 0 {
		if err := m.cache.Set(ctx, hc.hand.ID, hc.version, hc.round); err != nil {
			hc.logger.WithError(err).Warn("could not cache round")
		}
	}
}

func handNotFound(err error, handID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return poker.NewError(poker.CodeHandNotFound, "hand %s was not found", handID)
	}

	return err
}

func roomNotFound(err error, roomID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return poker.NewError(poker.CodeRoomNotFound, "room %s was not found", roomID)
	}

	return err
}
