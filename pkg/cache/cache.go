package cache

import (
	"context"
	"errors"
	"sync"

	"holdem-server/pkg/poker/betting"
)

// ErrMiss is returned when no round is cached for the hand and version
var ErrMiss = errors.New("round not cached")

// RoundCache caches the folded betting round of a hand
// version is the sequence number of the last action folded into the round. A round is only
// returned for the exact version it was stored under.
type RoundCache interface {
	Get(ctx context.Context, handID string, version int) (betting.Round, error)
	Set(ctx context.Context, handID string, version int, round betting.Round) error
}

type entry struct {
	version int
	round   betting.Round
}

// Memory keeps the latest round of each hand in memory
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewMemory returns an empty in-memory cache
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

// Get returns the cached round
func (m *Memory) Get(ctx context.Context, handID string, version int) (betting.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[handID]
	if !ok || e.version != version {
		return betting.Round{}, ErrMiss
	}

	return clone(e.round), nil
}

// Set stores the round, replacing any other version for the hand
func (m *Memory) Set(ctx context.Context, handID string, version int, round betting.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[handID] = entry{version: version, round: clone(round)}
	return nil
}

// Delete removes the hand from the cache
func (m *Memory) Delete(handID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, handID)
}

func clone(r betting.Round) betting.Round {
	players := make([]betting.PlayerState, len(r.Players))
	copy(players, r.Players)
	r.Players = players
	return r
}

// Nop never caches anything
type Nop struct{}

// Get always misses
func (Nop) Get(ctx context.Context, handID string, version int) (betting.Round, error) {
	return betting.Round{}, ErrMiss
}

// Set does nothing
func (Nop) Set(ctx context.Context, handID string, version int, round betting.Round) error {
	return nil
}
