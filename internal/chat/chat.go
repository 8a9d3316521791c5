// Package chat answers energy-savings questions through an OpenAI-compatible
// chat completions API.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Replies returned instead of an error. The chat endpoint never fails
// because the upstream model did.
const (
	NotConfiguredReply = "El asistente de IA no está configurado. Por favor, configure la API key de OpenAI para habilitar esta función."
	FailureReply       = "Lo siento, hubo un error al procesar tu consulta. Por favor, intenta de nuevo."
)

const (
	temperature = 0.7
	maxTokens   = 500
)

type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
}

type Client struct {
	rest *resty.Client
	cfg  Config
}

func New(cfg Config) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if cfg.Timeout > 0 {
		rest.SetTimeout(cfg.Timeout)
	}
	return &Client{rest: rest, cfg: cfg}
}

func (c *Client) Configured() bool { return c != nil && c.cfg.APIKey != "" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

var errNoChoices = errors.New("completion returned no choices")

// Reply answers message. calcContext is the JSON of the calculation the user
// is looking at and may be empty.
func (c *Client) Reply(ctx context.Context, msg string, calcContext json.RawMessage) string {
	if !c.Configured() {
		return NotConfiguredReply
	}
	text, err := c.complete(ctx, []message{
		{Role: "system", Content: SystemPrompt(c.cfg.Language, calcContext)},
		{Role: "user", Content: msg},
	})
	if err != nil {
		log.Error().Err(err).Msg("chat completion failed")
		return FailureReply
	}
	return text
}

func (c *Client) complete(ctx context.Context, msgs []message) (string, error) {
	var out completionResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(completionRequest{
			Model:       c.cfg.Model,
			Messages:    msgs,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat request: status %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", errNoChoices
	}
	return out.Choices[0].Message.Content, nil
}

// SystemPrompt frames the assistant and embeds the current calculation.
func SystemPrompt(language string, calcContext json.RawMessage) string {
	if language == "" {
		language = "Spanish"
	}
	ctxText := strings.TrimSpace(string(calcContext))
	if ctxText == "" {
		ctxText = "null"
	}
	return fmt.Sprintf(`You are an expert in industrial energy efficiency and energy savings.
You specialize in variable frequency drives, line reactors and motor protection circuit breakers.
You help analyze and optimize energy consumption, calculate ROI and make specific recommendations.
Always answer in %s, professionally but in a friendly tone.

Current calculation context (if available): %s`, language, ctxText)
}
