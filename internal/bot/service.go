// Package bot orchestrates one inbound message: dedupe, tenant resolution,
// the capability pipeline, and outbound dispatch.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leadbothq/leadbot/internal/dedupe"
	"github.com/leadbothq/leadbot/internal/pipeline"
	"github.com/leadbothq/leadbot/internal/tenant"
	"github.com/leadbothq/leadbot/internal/whatsapp"
)

// Sender delivers the decided reply to the conversant.
type Sender interface {
	SendText(ctx context.Context, phoneNumberID, to, text string) error
}

// Service implements the whatsapp.InboundProcessor contract. All
// per-message failures surface as returned errors and are logged at the
// webhook boundary; nothing propagates to the transport, whose
// acknowledgment has already been sent.
type Service struct {
	logger   *slog.Logger
	registry *tenant.Registry
	guard    *dedupe.Guard
	pipeline *pipeline.Pipeline
	sender   Sender
}

// NewService wires a message processor.
func NewService(log *slog.Logger, registry *tenant.Registry, guard *dedupe.Guard, pipe *pipeline.Pipeline, sender Sender) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		logger:   log.With(slog.String("service", "bot")),
		registry: registry,
		guard:    guard,
		pipeline: pipe,
		sender:   sender,
	}
}

// Process runs the decision pipeline for one inbound message and dispatches
// the reply, if any. Non-text and duplicate messages are dropped silently.
func (s *Service) Process(ctx context.Context, msg whatsapp.Inbound) error {
	if msg.Type != whatsapp.MessageTypeText {
		s.logger.Debug("ignoring non-text message",
			slog.String("message_id", msg.MessageID),
			slog.String("type", msg.Type),
		)
		return nil
	}
	if msg.MessageID == "" {
		return nil
	}
	if s.guard.Seen(msg.MessageID) {
		s.logger.Debug("duplicate message", slog.String("message_id", msg.MessageID))
		return nil
	}

	cfg := s.registry.Resolve(msg.RoutingKey)
	text := strings.TrimSpace(msg.Text)

	s.logger.Info("inbound message",
		slog.String("tenant_id", cfg.ID),
		slog.String("routing_key", msg.RoutingKey),
		slog.String("from", msg.ConversantID),
		slog.String("text", text),
	)

	action, ok, err := s.pipeline.Handle(ctx, cfg, pipeline.Message{
		TenantID:     cfg.ID,
		ConversantID: msg.ConversantID,
		Text:         text,
	})
	if err != nil {
		return fmt.Errorf("handle message %s: %w", msg.MessageID, err)
	}
	if !ok || action.ReplyText == "" {
		return nil
	}

	if err := s.sender.SendText(ctx, msg.RoutingKey, msg.ConversantID, action.ReplyText); err != nil {
		return fmt.Errorf("dispatch reply for %s: %w", msg.MessageID, err)
	}
	return nil
}
