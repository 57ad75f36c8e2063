package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Completer turns a system and user prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client defaults.
const (
	DefaultModel       = "gpt-4.1-mini"
	DefaultTemperature = 0.4
	DefaultMaxTokens   = 800
)

// Client errors
var (
	ErrMissingAPIKey   = errors.New("language model API key is not set")
	ErrEmptyCompletion = errors.New("language model returned no choices")
)

// ClientOptions configures an OpenAIClient.
type ClientOptions struct {
	BaseURL           string
	APIKey            string
	Model             string
	Temperature       float64
	MaxTokens         int
	RequestsPerMinute int // 0 disables rate limiting
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
// Implements Completer interface.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	limiter     *rate.Limiter
}

// NewOpenAIClient creates a chat completions client with rate limiting.
func NewOpenAIClient(opts ClientOptions) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if baseURL := strings.TrimRight(opts.BaseURL, "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	cfg.HTTPClient = httpClient

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1)
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
		limiter:     limiter,
	}, nil
}

// Complete sends one chat completion request and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
