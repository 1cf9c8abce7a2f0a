package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leadbothq/leadbot/internal/lead"
)

type memKey struct {
	tenantID     string
	conversantID string
}

// MemStore is an in-memory lead.Store for tests and local runs. Confirm
// performs the same check-and-set as the Postgres store, under a mutex.
type MemStore struct {
	mu       sync.Mutex
	sessions map[memKey]lead.State
	touched  map[memKey]time.Time
	records  []lead.Record
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		sessions: make(map[memKey]lead.State),
		touched:  make(map[memKey]time.Time),
	}
}

func (s *MemStore) Get(_ context.Context, tenantID, conversantID string) (lead.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[memKey{tenantID, conversantID}], nil
}

func (s *MemStore) Upsert(_ context.Context, tenantID, conversantID string, state lead.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memKey{tenantID, conversantID}
	s.sessions[key] = state
	s.touched[key] = time.Now()
	return nil
}

func (s *MemStore) Delete(_ context.Context, tenantID, conversantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memKey{tenantID, conversantID}
	delete(s.sessions, key)
	delete(s.touched, key)
	return nil
}

func (s *MemStore) Confirm(_ context.Context, tenantID, conversantID string) (lead.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memKey{tenantID, conversantID}
	state, ok := s.sessions[key]
	if !ok || state.Confirmed {
		return lead.State{}, false, nil
	}
	state.Confirmed = true
	s.sessions[key] = state
	s.touched[key] = time.Now()
	s.records = append(s.records, lead.Record{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ConversantID: conversantID,
		Name:         state.Name,
		Email:        state.Email,
		Need:         state.Need,
		CreatedAt:    time.Now(),
	})
	return state, true, nil
}

// Records returns a copy of the lead snapshots written so far.
func (s *MemStore) Records() []lead.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]lead.Record, len(s.records))
	copy(out, s.records)
	return out
}
