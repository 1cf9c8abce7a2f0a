package pipeline

import (
	"context"
	"fmt"

	"github.com/leadbothq/leadbot/internal/ai"
	"github.com/leadbothq/leadbot/internal/tenant"
)

// FallbackHandler asks the AI responder for a generated reply with the
// tenant's prompt and model parameters. It consumes every message that
// reaches it.
type FallbackHandler struct {
	Responder Responder
}

func (h *FallbackHandler) Attempt(ctx context.Context, cfg tenant.Config, msg Message) (Action, bool, error) {
	reply, err := h.Responder.Complete(ctx, msg.Text, ai.Params{
		SystemPrompt: cfg.SystemPrompt,
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
	})
	if err != nil {
		return Action{}, false, fmt.Errorf("ai completion: %w", err)
	}
	return Action{ReplyText: reply}, true, nil
}
