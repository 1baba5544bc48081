// Package enrich scores extracted job postings against a candidate
// profile using an external chat-completion service and persists the
// enriched records.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Scoring failure classes. Callers treat them per item; none of them is
// retried here.
var (
	ErrAuthentication = errors.New("scoring service rejected credentials")
	ErrRateLimited    = errors.New("scoring service rate limit hit")
	ErrService        = errors.New("scoring service failure")
)

// Scorer produces the raw analysis text for one posting.
type Scorer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// DeepSeekConfig configures the DeepSeek-backed Scorer. The API is
// OpenAI-compatible, so only the base URL and model name differ.
type DeepSeekConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

func (c *DeepSeekConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.deepseek.com"
	}
	if c.Model == "" {
		c.Model = "deepseek-reasoner"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 10000
	}
}

// DeepSeek is a Scorer backed by the DeepSeek chat-completion API.
type DeepSeek struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewDeepSeek builds the client.
func NewDeepSeek(cfg DeepSeekConfig) *DeepSeek {
	cfg.applyDefaults()
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	return &DeepSeek{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Complete sends the prompt with deterministic sampling parameters and
// returns the first choice's content.
func (d *DeepSeek) Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := d.client.CreateChatCompletion(ctx, d.newRequest(messages))
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choice list", ErrService)
	}
	return resp.Choices[0].Message.Content, nil
}

func (d *DeepSeek) newRequest(messages []openai.ChatCompletionMessage) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:    d.model,
		Messages: messages,
		// A literal 0 would be dropped from the request body by the
		// client's omitempty and the service would sample at its default
		// temperature. The smallest positive float survives serialization
		// and the service rounds it down to 0.
		Temperature: math.SmallestNonzeroFloat32,
		TopP:        1,
		MaxTokens:   d.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuthentication, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrService, err)
}
