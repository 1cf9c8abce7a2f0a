package pipeline

import (
	"context"
	"strings"

	"github.com/leadbothq/leadbot/internal/tenant"
)

// HandoffHandler replies with the tenant's handoff message when the text
// contains a configured keyword. Pure: no persistence.
type HandoffHandler struct{}

func (h *HandoffHandler) Attempt(_ context.Context, cfg tenant.Config, msg Message) (Action, bool, error) {
	handoff := cfg.Capabilities.Handoff
	if !handoff.Enabled {
		return Action{}, false, nil
	}
	lowered := strings.ToLower(msg.Text)
	for _, keyword := range handoff.Keywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return Action{ReplyText: handoff.Message}, true, nil
		}
	}
	return Action{}, false, nil
}
