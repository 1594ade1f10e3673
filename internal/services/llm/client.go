// Package llm sends the analysis prompt to OpenRouter.
//
// OpenRouter exposes an OpenAI-compatible chat completions API, so the
// go-openai client is pointed at the OpenRouter base URL. One request is made
// per analysis: no retries, no streaming.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/report-analyzer-api/internal/apperror"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/prompt"
)

// NoResponseText is returned as the result when the model answers with
// empty content.
const NoResponseText = "No response from analysis model."

// Options configures the client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout of the underlying HTTP client. Zero leaves it unset.
	Timeout time.Duration
	// Referer and Title are sent as OpenRouter attribution headers.
	Referer string
	Title   string
}

// Client performs chat completions against the configured provider.
type Client struct {
	api    *openai.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// New creates a new client. A missing API key is allowed; Complete then
// fails with an upstream error instead.
func New(opts Options, logger *zap.Logger) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	headers := http.Header{}
	if opts.Referer != "" {
		headers.Set("HTTP-Referer", opts.Referer)
	}
	if opts.Title != "" {
		headers.Set("X-Title", opts.Title)
	}
	cfg.HTTPClient = &http.Client{
		Timeout:   opts.Timeout,
		Transport: &headerTransport{base: http.DefaultTransport, headers: headers},
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		apiKey: opts.APIKey,
		model:  opts.Model,
		logger: logger,
	}
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Model returns the model identifier used for every request.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the rendered messages and returns the trimmed text of the
// first choice. Every failure is an *apperror.Error of kind upstream.
func (c *Client) Complete(ctx context.Context, msgs *prompt.Messages) (string, error) {
	if !c.IsConfigured() {
		return "", apperror.Upstream("Analysis provider is not configured",
			errors.New("OPENROUTER_API_KEY is not set"))
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: msgs.System},
			{Role: openai.ChatMessageRoleUser, Content: msgs.User},
		},
	})
	if err != nil {
		return "", c.classify(err)
	}

	c.logger.Debug("completion received",
		zap.String("model", c.model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("choices", len(resp.Choices)),
	)

	if len(resp.Choices) == 0 {
		return "", apperror.Upstream("No response from analysis model",
			errors.New("provider returned zero choices"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return NoResponseText, nil
	}
	return content, nil
}

// classify turns a go-openai error into an upstream error. Provider error
// messages are passed through; transport details stay in the wrapped cause.
// The API key is scrubbed from both.
func (c *Client) classify(err error) error {
	cause := &redactedError{err: err, secret: c.apiKey}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("Analysis provider returned status %d", apiErr.HTTPStatusCode)
		}
		return apperror.Upstream(redact(msg, c.apiKey), cause)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apperror.Upstream(fmt.Sprintf("Analysis provider returned status %d", reqErr.HTTPStatusCode), cause)
	}

	return apperror.Upstream("Failed to reach the analysis provider", cause)
}

// redactedError hides the API key in the text of a wrapped error.
type redactedError struct {
	err    error
	secret string
}

func (e *redactedError) Error() string { return redact(e.err.Error(), e.secret) }
func (e *redactedError) Unwrap() error { return e.err }

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[redacted]")
}

// headerTransport adds fixed headers to every outbound request.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range t.headers {
			req.Header[k] = v
		}
	}
	return t.base.RoundTrip(req)
}
