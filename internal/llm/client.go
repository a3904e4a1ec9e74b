package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/logging"
)

// ErrEmptyResponse is returned when the model answers with no choices
var ErrEmptyResponse = errors.New("empty chat response")

// Config holds the settings of an OpenAI-compatible chat endpoint
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	MaxRetries  int
	Timeout     time.Duration
}

// DefaultConfig targets a local Ollama server
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:11434/v1",
		APIKey:      "ollama",
		Model:       "qwen2.5:7b-instruct",
		Temperature: 0.2,
		MaxTokens:   512,
		MaxRetries:  1,
		Timeout:     60 * time.Second,
	}
}

// Options override the sampling settings of a single completion.
// Zero values fall back to the client configuration.
type Options struct {
	MaxTokens   int
	Temperature *float32
}

// Temperature returns a pointer for Options.Temperature
func Temperature(t float32) *float32 {
	return &t
}

// Client sends single-turn prompts to a chat completion endpoint
type Client struct {
	client  *openai.Client
	config  Config
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewClient creates a new client. Empty fields of cfg are filled from DefaultConfig.
func NewClient(cfg Config, metrics *instrumentation.Metrics, logger *slog.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = def.APIKey
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		metrics: metrics,
		logger:  logging.WithService(logger, "llm"),
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.config.Model
}

// Complete sends prompt as a single user message and returns the answer text
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}

	ctx, span := instrumentation.StartLLMSpan(ctx, c.config.Model)
	defer span.End()

	start := time.Now()
	var result string
	err := c.doWithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return ErrEmptyResponse
		}
		result = resp.Choices[0].Message.Content
		return nil
	})

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordLLMRequest(ctx, c.config.Model, status, time.Since(start))

	if err != nil {
		instrumentation.SetSpanError(span, err)
		c.logger.Warn("chat completion failed",
			slog.String("model", c.config.Model),
			logging.Err(err))
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}

	instrumentation.SetSpanSuccess(span)
	c.logger.Debug("chat completion finished",
		slog.String("model", c.config.Model),
		slog.Int("chars", len(result)),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	return result, nil
}

// doWithRetry runs fn up to MaxRetries times with exponential backoff
func (c *Client) doWithRetry(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < c.config.MaxRetries-1 {
			wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			c.logger.Debug("chat request failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Duration("wait", wait),
				logging.Err(err))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
