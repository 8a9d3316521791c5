package chat

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyNotConfigured(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	assert.False(t, c.Configured())
	assert.Equal(t, NotConfiguredReply, c.Reply(context.Background(), "hola", nil))
}

func TestReplySendsCompletionRequest(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Recupera la inversión en 1.3 años."}}]}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-4o-mini", Language: "Spanish", Timeout: time.Second})
	reply := c.Reply(context.Background(), "¿Cuándo recupero la inversión?", json.RawMessage(`{"paybackYears":1.3}`))

	assert.Equal(t, "Recupera la inversión en 1.3 años.", reply)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, `{"paybackYears":1.3}`)
	assert.Contains(t, got.Messages[0].Content, "Always answer in Spanish")
	assert.Equal(t, message{Role: "user", Content: "¿Cuándo recupero la inversión?"}, got.Messages[1])
}

func TestReplyFallsBackOnUpstreamFailure(t *testing.T) {
	for name, handler := range map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"no choices": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		},
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()
			c := New(Config{APIKey: "k", BaseURL: srv.URL})
			assert.Equal(t, FailureReply, c.Reply(context.Background(), "hola", nil))
		})
	}
}

func TestReplyFallsBackOnUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{APIKey: "k", BaseURL: url, Timeout: time.Second})
	assert.Equal(t, FailureReply, c.Reply(context.Background(), "hola", nil))
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt("", nil)
	assert.Contains(t, p, "Always answer in Spanish")
	assert.Contains(t, p, "context (if available): null")

	p = SystemPrompt("English", json.RawMessage(` {"kw":7.46} `))
	assert.Contains(t, p, "Always answer in English")
	assert.Contains(t, p, `{"kw":7.46}`)
}
