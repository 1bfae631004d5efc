package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/logger"
)

func testProviderConfig(url string) entities.ProviderConfig {
	return entities.ProviderConfig{
		Name:        "Groq",
		EndpointURL: url,
		APIKey:      "test-key",
		Model:       "llama-3.1-70b-versatile",
		Temperature: 0.7,
		MaxTokens:   300,
	}
}

func testMessages() []entities.ChatMessage {
	return []entities.ChatMessage{
		{Role: entities.RoleSystem, Content: "You are a helpful assistant."},
		{Role: entities.RoleUser, Content: "hello"},
	}
}

func TestComplete_ChoicesShape(t *testing.T) {
	var captured completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Hi there"}}]}`))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, logger.NewNop())
	reply, err := client.Complete(context.Background(), testProviderConfig(server.URL), testMessages())

	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.Equal(t, "llama-3.1-70b-versatile", captured.Model)
	assert.Equal(t, 0.7, captured.Temperature)
	assert.Equal(t, 300, captured.MaxTokens)
	assert.Equal(t, float64(1), captured.TopP)
	assert.False(t, captured.Stream)
	assert.Len(t, captured.Messages, 2)
}

func TestComplete_ReplyShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reply":"Direct reply"}`))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, logger.NewNop())
	reply, err := client.Complete(context.Background(), testProviderConfig(server.URL), testMessages())

	require.NoError(t, err)
	assert.Equal(t, "Direct reply", reply)
}

func TestComplete_ChoicesWinOverReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"from choices"}}],"reply":"from reply"}`))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, logger.NewNop())
	reply, err := client.Complete(context.Background(), testProviderConfig(server.URL), testMessages())

	require.NoError(t, err)
	assert.Equal(t, "from choices", reply)
}

func TestComplete_MalformedResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `<html>gateway error</html>`},
		{"empty object", `{}`},
		{"empty choices", `{"choices":[]}`},
		{"blank content", `{"choices":[{"message":{"content":""}}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient(5*time.Second, logger.NewNop())
			_, err := client.Complete(context.Background(), testProviderConfig(server.URL), testMessages())

			var malformed *entities.MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, "Groq", malformed.Provider)
		})
	}
}

func TestComplete_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit exceeded"}`))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, logger.NewNop())
	_, err := client.Complete(context.Background(), testProviderConfig(server.URL), testMessages())

	var perr *entities.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
	assert.Contains(t, perr.Body, "rate limit")
}

func TestComplete_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(time.Second, logger.NewNop())
	_, err := client.Complete(context.Background(), testProviderConfig(server.URL), testMessages())

	var perr *entities.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Zero(t, perr.Status)
	assert.Error(t, errors.Unwrap(perr))
}

func TestComplete_ConfigurationCheckedBeforeNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(5*time.Second, logger.NewNop())

	cfg := testProviderConfig(server.URL)
	cfg.APIKey = ""
	_, err := client.Complete(context.Background(), cfg, testMessages())

	var cerr *entities.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "Groq", cerr.Provider)
	assert.False(t, called, "no network call may happen for an unconfigured provider")

	cfg = testProviderConfig("")
	_, err = client.Complete(context.Background(), cfg, testMessages())
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "endpoint URL", cerr.Missing)
}
