// Package statestore owns the bridge's only mutable state: the mapping from
// workflow key to the generation time of the last snapshot that reached the
// chain. It is a rate-limiting optimization, not a ledger — losing it costs
// one redundant publish attempt per workflow, which the registry's duplicate
// check absorbs.
package statestore

import (
	"sync"
	"time"

	"github.com/orbital-sentinel/sentinel/internal/freshness"
)

// Store loads and saves the write-state mapping as a whole. The orchestrator
// loads once at cycle start and saves once after every workflow has joined.
type Store interface {
	Load() (map[string]string, error)
	Save(state map[string]string) error
}

// Advance records a newly published generation time for a workflow, keeping
// the mapping monotonic: an older time never overwrites a newer one. Returns
// whether the entry changed.
func Advance(state map[string]string, workflowKey string, generatedAt time.Time) bool {
	next := freshness.Normalize(generatedAt)

	prev, exists := state[workflowKey]
	if exists {
		if prev == next {
			return false
		}
		// Unparseable previous values lose to any parseable new one.
		if t, err := time.Parse(time.RFC3339Nano, prev); err == nil && !generatedAt.After(t) {
			return false
		}
	}

	state[workflowKey] = next
	return true
}

// MemoryStore is an in-process Store for tests and dry runs.
type MemoryStore struct {
	mu    sync.Mutex
	state map[string]string
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: make(map[string]string)}
}

// Load returns a copy of the held state.
func (m *MemoryStore) Load() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.state))
	for k, v := range m.state {
		out[k] = v
	}
	return out, nil
}

// Save replaces the held state with a copy of the given mapping.
func (m *MemoryStore) Save(state map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = make(map[string]string, len(state))
	for k, v := range state {
		m.state[k] = v
	}
	return nil
}
