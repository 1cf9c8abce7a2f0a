package pipeline

import (
	"context"
	"strings"

	"github.com/leadbothq/leadbot/internal/tenant"
)

// FAQHandler answers with the first configured item whose match phrase
// occurs in the text. Items are scanned in their configured order. Pure.
type FAQHandler struct{}

func (h *FAQHandler) Attempt(_ context.Context, cfg tenant.Config, msg Message) (Action, bool, error) {
	faq := cfg.Capabilities.FAQ
	if !faq.Enabled {
		return Action{}, false, nil
	}
	lowered := strings.ToLower(msg.Text)
	for _, item := range faq.Items {
		if item.Q == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(item.Q)) {
			return Action{ReplyText: item.A}, true, nil
		}
	}
	return Action{}, false, nil
}
