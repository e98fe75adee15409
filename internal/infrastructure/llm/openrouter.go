package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"SponsorFinder/internal/config"
	"SponsorFinder/internal/ports"
)

// ErrMisconfigured is returned when the client lacks a key, endpoint or model.
var ErrMisconfigured = errors.New("reasoning client misconfigured")

// OpenRouterClient implements ports.ReasoningClient against OpenRouter's
// OpenAI-compatible chat completions API.
type OpenRouterClient struct {
	client openai.Client
	model  string
	ready  bool
	logger *slog.Logger
}

var _ ports.ReasoningClient = (*OpenRouterClient)(nil)

// NewOpenRouterClient builds a client from configuration. SDK retries are
// disabled: the caller gets exactly one attempt per request.
func NewOpenRouterClient(cfg config.ReasoningConfig, httpClient *http.Client, log *slog.Logger) *OpenRouterClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.AppTitle != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.AppTitle))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenRouterClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		ready:  cfg.APIKey != "" && cfg.Endpoint != "" && cfg.Model != "",
		logger: log,
	}
}

// Model returns the configured model identifier.
func (c *OpenRouterClient) Model() string {
	return c.model
}

// Complete sends the prompt and returns the first choice's message content.
func (c *OpenRouterClient) Complete(ctx context.Context, req ports.ReasoningRequest) (string, error) {
	if c == nil || !c.ready {
		return "", ErrMisconfigured
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.SchemaName,
					Description: openai.String("Structured response schema"),
					Schema:      req.Schema,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openrouter chat: %w", describe(err))
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter chat: no choices in response")
	}

	c.debug("reasoning call completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	return resp.Choices[0].Message.Content, nil
}

// StatusError carries the HTTP status of a failed provider call.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func describe(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.StatusCode, Err: err}
	}
	return err
}

func (c *OpenRouterClient) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
