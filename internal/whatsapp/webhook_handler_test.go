package whatsapp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadbothq/leadbot/internal/whatsapp"
)

// collectProcessor records processed messages and signals on each one.
type collectProcessor struct {
	mu       sync.Mutex
	messages []whatsapp.Inbound
	signal   chan struct{}
}

func newCollectProcessor() *collectProcessor {
	return &collectProcessor{signal: make(chan struct{}, 16)}
}

func (p *collectProcessor) Process(_ context.Context, msg whatsapp.Inbound) error {
	p.mu.Lock()
	p.messages = append(p.messages, msg)
	p.mu.Unlock()
	p.signal <- struct{}{}
	return nil
}

func (p *collectProcessor) wait(t *testing.T, n int) []whatsapp.Inbound {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-p.signal:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d of %d", i+1, n)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]whatsapp.Inbound, len(p.messages))
	copy(out, p.messages)
	return out
}

func newWebhookContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleVerify_TokenMatchEchoesChallenge(t *testing.T) {
	h := whatsapp.NewWebhookHandler(nil, "shared-secret", newCollectProcessor())

	params := url.Values{}
	params.Set("hub.mode", "subscribe")
	params.Set("hub.verify_token", "shared-secret")
	params.Set("hub.challenge", "challenge-42")
	c, rec := newWebhookContext(http.MethodGet, "/webhook?"+params.Encode(), "")

	require.NoError(t, h.HandleVerify(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "challenge-42", rec.Body.String())
}

func TestHandleVerify_TokenMismatchRejected(t *testing.T) {
	h := whatsapp.NewWebhookHandler(nil, "shared-secret", newCollectProcessor())

	params := url.Values{}
	params.Set("hub.mode", "subscribe")
	params.Set("hub.verify_token", "wrong")
	params.Set("hub.challenge", "challenge-42")
	c, _ := newWebhookContext(http.MethodGet, "/webhook?"+params.Encode(), "")

	err := h.HandleVerify(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestHandle_AcksAndProcessesAsync(t *testing.T) {
	processor := newCollectProcessor()
	h := whatsapp.NewWebhookHandler(nil, "secret", processor)

	payload := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "entry-1",
			"changes": [{
				"field": "messages",
				"value": {
					"metadata": {"phone_number_id": "100200300"},
					"messages": [{
						"id": "wamid.1",
						"from": "5215550001",
						"type": "text",
						"text": {"body": "hola"}
					}]
				}
			}]
		}]
	}`
	c, rec := newWebhookContext(http.MethodPost, "/webhook", payload)

	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	msgs := processor.wait(t, 1)
	require.Len(t, msgs, 1)
	assert.Equal(t, "100200300", msgs[0].RoutingKey)
	assert.Equal(t, "5215550001", msgs[0].ConversantID)
	assert.Equal(t, "wamid.1", msgs[0].MessageID)
	assert.Equal(t, "text", msgs[0].Type)
	assert.Equal(t, "hola", msgs[0].Text)
}

func TestHandle_NonTextStillForwardedWithType(t *testing.T) {
	processor := newCollectProcessor()
	h := whatsapp.NewWebhookHandler(nil, "secret", processor)

	payload := `{
		"entry": [{"changes": [{"value": {
			"metadata": {"phone_number_id": "100200300"},
			"messages": [{"id": "wamid.2", "from": "5215550001", "type": "image"}]
		}}]}]
	}`
	c, rec := newWebhookContext(http.MethodPost, "/webhook", payload)

	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	msgs := processor.wait(t, 1)
	require.Len(t, msgs, 1)
	assert.Equal(t, "image", msgs[0].Type)
	assert.Empty(t, msgs[0].Text)
}

func TestHandle_MalformedPayloadAcked(t *testing.T) {
	h := whatsapp.NewWebhookHandler(nil, "secret", newCollectProcessor())
	c, rec := newWebhookContext(http.MethodPost, "/webhook", "not json at all")

	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandle_EmptyEnvelopeAcked(t *testing.T) {
	processor := newCollectProcessor()
	h := whatsapp.NewWebhookHandler(nil, "secret", processor)
	c, rec := newWebhookContext(http.MethodPost, "/webhook", `{"entry": []}`)

	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, processor.messages)
}
