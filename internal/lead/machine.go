package lead

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leadbothq/leadbot/internal/tenant"
)

// Outcome is the result of one turn through the machine. Replied false
// signals "collection complete, no further prompt": the caller should fall
// through to the next capability.
type Outcome struct {
	Reply   string
	Replied bool
}

// Machine collects tenant-configured fields across turns, using the Store
// as the only memory between them. Each accepted field is persisted
// immediately so partial progress survives a crash mid-turn.
type Machine struct {
	store  Store
	logger *slog.Logger
}

// NewMachine creates a Machine backed by the given store.
func NewMachine(log *slog.Logger, store Store) *Machine {
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		store:  store,
		logger: log.With(slog.String("service", "lead")),
	}
}

// Advance runs one turn of field collection for the conversation key.
// Fields are processed in the fixed order name, email, need; only fields the
// tenant declares participate. Confirmation happens at most once per key:
// the store's conditional Confirm closes the concurrent-completion race.
func (m *Machine) Advance(ctx context.Context, cfg tenant.LeadCaptureConfig, tenantID, conversantID, text string) (Outcome, error) {
	participating := participatingFields(cfg.Fields)
	if len(participating) == 0 {
		return Outcome{}, nil
	}

	state, err := m.store.Get(ctx, tenantID, conversantID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load session: %w", err)
	}
	if state.Confirmed {
		return Outcome{}, nil
	}

	for _, field := range participating {
		if state.FieldSet(field) {
			continue
		}
		if !ValidInput(field, text) {
			return Outcome{Reply: cfg.Prompt(field), Replied: true}, nil
		}
		state.SetField(field, text)
		if err := m.store.Upsert(ctx, tenantID, conversantID, state); err != nil {
			return Outcome{}, fmt.Errorf("save session: %w", err)
		}
	}

	_, won, err := m.store.Confirm(ctx, tenantID, conversantID)
	if err != nil {
		return Outcome{}, fmt.Errorf("confirm lead: %w", err)
	}
	if !won {
		return Outcome{}, nil
	}

	m.logger.Info("lead confirmed",
		slog.String("tenant_id", tenantID),
		slog.String("conversant_id", conversantID),
	)
	return Outcome{Reply: cfg.ConfirmMessage, Replied: true}, nil
}

func participatingFields(declared []tenant.Field) []tenant.Field {
	if len(declared) == 0 {
		return nil
	}
	wanted := make(map[tenant.Field]struct{}, len(declared))
	for _, f := range declared {
		wanted[f] = struct{}{}
	}
	fields := make([]tenant.Field, 0, len(wanted))
	for _, f := range tenant.CollectionOrder {
		if _, ok := wanted[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}
