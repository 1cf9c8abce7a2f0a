package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Dispatcher sends text replies through the WhatsApp Cloud API.
type Dispatcher struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDispatcher creates a Dispatcher against the given Graph API base URL.
func NewDispatcher(log *slog.Logger, baseURL, token string, timeout time.Duration) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v24.0"
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With(slog.String("service", "whatsapp")),
	}
}

type sendTextRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             sendText `json:"text"`
}

type sendText struct {
	Body string `json:"body"`
}

// SendText delivers a text reply to a conversant via the tenant's phone
// number. Failures are returned for the caller to log; the core never
// retries them.
func (d *Dispatcher) SendText(ctx context.Context, phoneNumberID, to, text string) error {
	payload := sendTextRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             MessageTypeText,
		Text:             sendText{Body: text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", d.baseURL, phoneNumberID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		d.logger.Error("send failed",
			slog.String("phone_number_id", phoneNumberID),
			slog.Int("status", resp.StatusCode),
			slog.String("body_prefix", strings.TrimSpace(string(respBody))),
		)
		return fmt.Errorf("whatsapp api status %d", resp.StatusCode)
	}
	return nil
}
