package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

// InboundProcessor runs the per-message pipeline for one inbound message.
type InboundProcessor interface {
	Process(ctx context.Context, msg Inbound) error
}

// WebhookHandler receives WhatsApp Cloud API webhook callbacks. The POST
// handler acknowledges immediately and runs the pipeline asynchronously so
// slow downstream work never blocks the platform's retry timer.
type WebhookHandler struct {
	logger      *slog.Logger
	verifyToken string
	processor   InboundProcessor
}

// NewWebhookHandler creates a webhook handler for the configured verify
// token and processor.
func NewWebhookHandler(log *slog.Logger, verifyToken string, processor InboundProcessor) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		logger:      log.With(slog.String("handler", "whatsapp_webhook")),
		verifyToken: verifyToken,
		processor:   processor,
	}
}

// Register registers the webhook routes.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.GET("/webhook", h.HandleVerify)
	e.POST("/webhook", h.Handle)
}

// HandleVerify answers the platform subscription handshake: it echoes the
// challenge when the verify token matches, else rejects.
func (h *WebhookHandler) HandleVerify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.verifyToken {
		return c.String(http.StatusOK, challenge)
	}
	return echo.NewHTTPError(http.StatusForbidden, "verification failed")
}

// Handle decodes the webhook envelope and hands each message to the
// processor. Malformed payloads are acknowledged and dropped; the platform
// gets a 200 regardless of what the pipeline later does.
func (h *WebhookHandler) Handle(c echo.Context) error {
	if h.processor == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "webhook processor not configured")
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(body)) > webhookMaxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("payload too large: max %d bytes", webhookMaxBodyBytes))
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("undecodable webhook payload", slog.Any("error", err))
		return c.NoContent(http.StatusOK)
	}

	for _, msg := range extractInbound(payload) {
		go h.process(context.WithoutCancel(c.Request().Context()), msg)
	}
	return c.NoContent(http.StatusOK)
}

func (h *WebhookHandler) process(ctx context.Context, msg Inbound) {
	if err := h.processor.Process(ctx, msg); err != nil {
		h.logger.Error("process inbound message failed",
			slog.String("message_id", msg.MessageID),
			slog.String("routing_key", msg.RoutingKey),
			slog.Any("error", err),
		)
	}
}

func extractInbound(payload Payload) []Inbound {
	var out []Inbound
	now := time.Now()
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			for _, msg := range value.Messages {
				if msg.ID == "" {
					continue
				}
				inbound := Inbound{
					RoutingKey:   value.Metadata.PhoneNumberID,
					ConversantID: msg.From,
					MessageID:    msg.ID,
					Type:         msg.Type,
					ReceivedAt:   now,
				}
				if msg.Text != nil {
					inbound.Text = msg.Text.Body
				}
				out = append(out, inbound)
			}
		}
	}
	return out
}
