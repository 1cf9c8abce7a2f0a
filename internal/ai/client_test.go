package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadbothq/leadbot/internal/ai"
)

func TestComplete(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  Hola, ¿en qué te ayudo?  "}},
			},
		})
	}))
	defer srv.Close()

	client := ai.NewClient(nil, srv.URL, "sk-test", time.Second)
	reply, err := client.Complete(context.Background(), "hola", ai.Params{
		SystemPrompt: "Eres un asistente útil.",
		Model:        "gpt-4o-mini",
		Temperature:  0.4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hola, ¿en qué te ayudo?", reply, "reply is trimmed")

	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestComplete_EmptyChoicesYieldsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := ai.NewClient(nil, srv.URL, "", time.Second)
	reply, err := client.Complete(context.Background(), "hola", ai.Params{Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, ai.FallbackReply, reply)
}

func TestComplete_BlankContentYieldsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "   "}},
			},
		})
	}))
	defer srv.Close()

	client := ai.NewClient(nil, srv.URL, "", time.Second)
	reply, err := client.Complete(context.Background(), "hola", ai.Params{Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, ai.FallbackReply, reply)
}

func TestComplete_APIErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := ai.NewClient(nil, srv.URL, "", time.Second)
	_, err := client.Complete(context.Background(), "hola", ai.Params{Model: "gpt-4o-mini"})
	assert.Error(t, err)
}
