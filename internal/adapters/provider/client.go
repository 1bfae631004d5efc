// Package provider implements the outbound chat-completion client for
// OpenAI-compatible endpoints (Groq, DeepSeek).
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/logger"
)

// Client performs single chat-completion calls. It never retries; the
// primary/fallback sequence belongs to the orchestrator.
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a provider client with the given per-request timeout.
func NewClient(timeout time.Duration, appLogger *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     appLogger.WithComponent("provider_client"),
	}
}

// completionRequest is the OpenAI-compatible chat-completions body.
type completionRequest struct {
	Model       string                 `json:"model"`
	Messages    []entities.ChatMessage `json:"messages"`
	Temperature float64                `json:"temperature"`
	MaxTokens   int                    `json:"max_tokens"`
	TopP        float64                `json:"top_p"`
	Stream      bool                   `json:"stream"`
}

// completionResponse accepts both shapes seen in the wild: the
// OpenAI-style choices list and a direct reply field.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Reply string `json:"reply"`
}

// Complete sends one POST to the provider and returns the reply text.
// Configuration is checked before any network activity.
func (c *Client) Complete(ctx context.Context, cfg entities.ProviderConfig, messages []entities.ChatMessage) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(completionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TopP:        1,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.EndpointURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.LogProviderCall(cfg.Name, 0, durationMS(start), err)
		return "", &entities.ProviderError{Provider: cfg.Name, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.LogProviderCall(cfg.Name, resp.StatusCode, durationMS(start), err)
		return "", &entities.ProviderError{Provider: cfg.Name, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := &entities.ProviderError{Provider: cfg.Name, Status: resp.StatusCode, Body: string(respBody)}
		c.logger.LogProviderCall(cfg.Name, resp.StatusCode, durationMS(start), perr)
		return "", perr
	}

	reply, err := parseReply(cfg.Name, respBody)
	c.logger.LogProviderCall(cfg.Name, resp.StatusCode, durationMS(start), err)
	if err != nil {
		return "", err
	}
	return reply, nil
}

// parseReply normalizes the two accepted response shapes in fixed priority
// order: choices[0].message.content first, then a top-level reply field.
func parseReply(providerName string, body []byte) (string, error) {
	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &entities.MalformedResponseError{Provider: providerName, Body: string(body)}
	}

	if len(parsed.Choices) > 0 && parsed.Choices[0].Message.Content != "" {
		return parsed.Choices[0].Message.Content, nil
	}
	if parsed.Reply != "" {
		return parsed.Reply, nil
	}

	return "", &entities.MalformedResponseError{Provider: providerName, Body: string(body)}
}

func durationMS(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
