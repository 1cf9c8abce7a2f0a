// Package pipeline decides a single outbound action for one inbound text
// message by consulting capability handlers in fixed priority order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leadbothq/leadbot/internal/ai"
	"github.com/leadbothq/leadbot/internal/lead"
	"github.com/leadbothq/leadbot/internal/tenant"
)

// Message is one inbound text message, trimmed, with its conversation key.
type Message struct {
	TenantID     string
	ConversantID string
	Text         string
}

// Action is the outbound decision of a handler.
type Action struct {
	ReplyText string
}

// Handler is one capability in the pipeline. It returns (action, true) to
// consume the message and short-circuit, or false to fall through.
type Handler interface {
	Attempt(ctx context.Context, cfg tenant.Config, msg Message) (Action, bool, error)
}

// Responder generates the fallback AI reply.
type Responder interface {
	Complete(ctx context.Context, text string, params ai.Params) (string, error)
}

// Pipeline runs handlers in order until one consumes the message.
type Pipeline struct {
	handlers []Handler
	logger   *slog.Logger
}

// New assembles the standard handler order: reset, handoff, faq, lead
// capture, AI fallback.
func New(log *slog.Logger, store lead.Store, machine *lead.Machine, responder Responder) *Pipeline {
	return NewWithHandlers(log,
		&ResetHandler{Store: store},
		&HandoffHandler{},
		&FAQHandler{},
		&LeadCaptureHandler{Machine: machine},
		&FallbackHandler{Responder: responder},
	)
}

// NewWithHandlers builds a pipeline with an explicit handler order.
func NewWithHandlers(log *slog.Logger, handlers ...Handler) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		handlers: handlers,
		logger:   log.With(slog.String("service", "pipeline")),
	}
}

// Handle runs the message through the handlers. ok is false when no handler
// produced an action.
func (p *Pipeline) Handle(ctx context.Context, cfg tenant.Config, msg Message) (Action, bool, error) {
	for _, h := range p.handlers {
		action, handled, err := h.Attempt(ctx, cfg, msg)
		if err != nil {
			return Action{}, false, fmt.Errorf("pipeline handler %T: %w", h, err)
		}
		if handled {
			return action, true, nil
		}
	}
	return Action{}, false, nil
}
