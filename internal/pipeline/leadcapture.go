package pipeline

import (
	"context"

	"github.com/leadbothq/leadbot/internal/lead"
	"github.com/leadbothq/leadbot/internal/tenant"
)

// LeadCaptureHandler delegates to the lead state machine. A prompt or the
// confirmation message consumes the message; a completed collection falls
// through so later turns reach the AI fallback.
type LeadCaptureHandler struct {
	Machine *lead.Machine
}

func (h *LeadCaptureHandler) Attempt(ctx context.Context, cfg tenant.Config, msg Message) (Action, bool, error) {
	capture := cfg.Capabilities.LeadCapture
	if !capture.Enabled {
		return Action{}, false, nil
	}
	outcome, err := h.Machine.Advance(ctx, capture, cfg.ID, msg.ConversantID, msg.Text)
	if err != nil {
		return Action{}, false, err
	}
	if !outcome.Replied {
		return Action{}, false, nil
	}
	return Action{ReplyText: outcome.Reply}, true, nil
}
