// Package lead implements the multi-turn lead-capture state machine and its
// conversation state model.
package lead

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/leadbothq/leadbot/internal/tenant"
)

// State is the mutable per-(tenant, conversant) record the state machine
// drives between turns. The JSON shape is the persisted session document.
type State struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Need      string `json:"need,omitempty"`
	Confirmed bool   `json:"_confirmed,omitempty"`
}

// FieldSet reports whether the given field already holds a value.
func (s State) FieldSet(field tenant.Field) bool {
	return s.Field(field) != ""
}

// Field returns the stored value for the given field.
func (s State) Field(field tenant.Field) string {
	switch field {
	case tenant.FieldName:
		return s.Name
	case tenant.FieldEmail:
		return s.Email
	case tenant.FieldNeed:
		return s.Need
	}
	return ""
}

// SetField stores a value for the given field.
func (s *State) SetField(field tenant.Field, value string) {
	switch field {
	case tenant.FieldName:
		s.Name = value
	case tenant.FieldEmail:
		s.Email = value
	case tenant.FieldNeed:
		s.Need = value
	}
}

// Record is an immutable lead snapshot, written exactly once when a state
// transitions to confirmed.
type Record struct {
	ID           uuid.UUID
	TenantID     string
	ConversantID string
	Name         string
	Email        string
	Need         string
	CreatedAt    time.Time
}

// Store is the conversation-state persistence the machine depends on.
// Get returns the zero State when no record exists. Confirm is an atomic
// check-and-set: it marks the state confirmed and writes the lead Record
// snapshot in a single conditional write, reporting whether this call won
// the transition.
type Store interface {
	Get(ctx context.Context, tenantID, conversantID string) (State, error)
	Upsert(ctx context.Context, tenantID, conversantID string, state State) error
	Delete(ctx context.Context, tenantID, conversantID string) error
	Confirm(ctx context.Context, tenantID, conversantID string) (State, bool, error)
}
