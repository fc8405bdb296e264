package orchestrator

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-memory Store for tests and smoke runs.
// Contexts are stored as deep copies via JSON so later mutation of a
// live context does not leak into saved state.
type MemoryStore struct {
	mu        sync.RWMutex
	contexts  map[string]json.RawMessage
	results   []*ModuleResult
	events    []*Event
	summaries map[string]*JourneySummary
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contexts:  make(map[string]json.RawMessage),
		summaries: make(map[string]*JourneySummary),
	}
}

// SaveContext stores a snapshot of the context.
func (s *MemoryStore) SaveContext(_ context.Context, sc *StrategicContext) error {
	raw, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[sc.SessionID] = raw
	return nil
}

// LoadContext returns a copy of the saved context.
func (s *MemoryStore) LoadContext(_ context.Context, sessionID string) (*StrategicContext, error) {
	s.mu.RLock()
	raw, ok := s.contexts[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, NewNotFoundError("session "+sessionID, nil)
	}
	var sc StrategicContext
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// SaveModuleResult appends an execution record.
func (s *MemoryStore) SaveModuleResult(_ context.Context, res *ModuleResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *res
	s.results = append(s.results, &copied)
	return nil
}

// SaveEvent appends a progress event.
func (s *MemoryStore) SaveEvent(_ context.Context, ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *ev
	s.events = append(s.events, &copied)
	return nil
}

// SaveSummary stores the journey summary keyed by session.
func (s *MemoryStore) SaveSummary(_ context.Context, summary *JourneySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *summary
	s.summaries[summary.SessionID] = &copied
	return nil
}

// ModuleResults returns the recorded execution attempts for a session.
func (s *MemoryStore) ModuleResults(sessionID string) []*ModuleResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ModuleResult
	for _, r := range s.results {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out
}

// Events returns the recorded events for a session.
func (s *MemoryStore) Events(sessionID string) []*Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Event
	for _, e := range s.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out
}

// Summary returns the saved summary for a session, or nil.
func (s *MemoryStore) Summary(sessionID string) *JourneySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaries[sessionID]
}
