package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadbothq/leadbot/internal/lead"
	"github.com/leadbothq/leadbot/internal/tenant"
)

const (
	resetCommand = "reset"
	resetAck     = "Sesión reiniciada ✅"
)

// ResetHandler destroys the conversation key's state when the literal reset
// command arrives. It runs before every capability and is tenant-independent.
type ResetHandler struct {
	Store lead.Store
}

func (h *ResetHandler) Attempt(ctx context.Context, cfg tenant.Config, msg Message) (Action, bool, error) {
	if !strings.EqualFold(strings.TrimSpace(msg.Text), resetCommand) {
		return Action{}, false, nil
	}
	if err := h.Store.Delete(ctx, cfg.ID, msg.ConversantID); err != nil {
		return Action{}, false, fmt.Errorf("reset session: %w", err)
	}
	return Action{ReplyText: resetAck}, true, nil
}
