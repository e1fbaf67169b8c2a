// Package generation implements jdoc.CommentGenerator on top of a
// text-generation capability, adding retries, response normalization and
// validation.
package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var _ jdoc.CommentGenerator = (*Client)(nil)

// Defaults for Client.
const (
	DefaultMaxAttempts    = 5
	DefaultBaseDelay      = 2 * time.Second
	DefaultMaxDelay       = 60 * time.Second
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxTokens      = 1024
	DefaultMaxLength      = 2000

	// FieldMaxTokens caps the output budget of field and constant comments.
	FieldMaxTokens = 200
)

// Client implements jdoc.CommentGenerator.
type Client struct {
	text        jdoc.TextGenerator
	maxAttempts int
	backoff     func(attempt int) time.Duration
	timeout     time.Duration
	maxTokens   int
	maxLength   int
	language    string
	ceiling     *Ceiling
	logger      *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMaxAttempts sets how many times a retryable failure is attempted.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithBackoff sets the delays between attempts to base·2^(attempt-1),
// capped at maxDelay.
func WithBackoff(base, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.backoff = ExponentialBackoff(base, maxDelay)
	}
}

// WithBackoffFunc sets the function returning the delay after a failed
// attempt (1-indexed).
func WithBackoffFunc(fn func(attempt int) time.Duration) Option {
	return func(c *Client) {
		c.backoff = fn
	}
}

// WithTimeout sets the timeout for a single provider call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxTokens sets the output token budget used when a request has none.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		c.maxTokens = n
	}
}

// WithMaxLength sets the maximum accepted comment length in bytes.
func WithMaxLength(n int) Option {
	return func(c *Client) {
		c.maxLength = n
	}
}

// WithLanguage sets the natural language comments are written in.
func WithLanguage(language string) Option {
	return func(c *Client) {
		c.language = language
	}
}

// WithCeiling shares a process-wide bound on in-flight requests.
func WithCeiling(ceiling *Ceiling) Option {
	return func(c *Client) {
		c.ceiling = ceiling
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Client generating text with text.
func NewClient(text jdoc.TextGenerator, opts ...Option) *Client {
	c := &Client{
		text:        text,
		maxAttempts: DefaultMaxAttempts,
		backoff:     ExponentialBackoff(DefaultBaseDelay, DefaultMaxDelay),
		timeout:     DefaultRequestTimeout,
		maxTokens:   DefaultMaxTokens,
		maxLength:   DefaultMaxLength,
		language:    "English",
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c
}

// Generate returns the normalized comment body for req. A response that
// fails validation is re-requested once with stricter instructions.
func (c *Client) Generate(ctx context.Context, req jdoc.CommentRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	if req.Format == jdoc.FormatLineComment && maxTokens > FieldMaxTokens {
		maxTokens = FieldMaxTokens
	}

	var verr error
	for _, strict := range []bool{false, true} {
		prompt := jdoc.RenderPrompt(req, c.language, strict)
		raw, err := c.call(ctx, prompt, maxTokens, req.Target.Name)
		if err != nil {
			return "", err
		}
		body := Normalize(raw)
		if verr = Validate(body, req.Format, c.maxLength); verr == nil {
			return body, nil
		}
		c.logger.Debug("invalid comment", "element", req.Target.Name, "strict", strict, "err", verr)
	}
	return "", &jdoc.Error{Kind: jdoc.ErrGenerationInvalidFormat, Element: req.Target.Name, Err: verr}
}

// call invokes the provider, retrying rate limits and transient failures
// with exponential backoff. Each call runs detached from ctx cancellation,
// bounded by the per-call timeout, so in-flight requests complete; ctx
// cancellation stops further attempts.
func (c *Client) call(ctx context.Context, prompt string, maxTokens int, element string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		// Check for context cancellation before each attempt
		select {
		case <-ctx.Done():
			return "", canceled(element, ctx.Err())
		default:
		}

		if err := c.ceiling.Acquire(ctx); err != nil {
			return "", canceled(element, err)
		}
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		text, err := c.text.GenerateText(callCtx, prompt, maxTokens)
		cancel()
		c.ceiling.Release()
		if err == nil {
			return text, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = &jdoc.ProviderError{Kind: jdoc.ProviderTransient, Message: fmt.Sprintf("request timed out after %s", c.timeout)}
		}
		lastErr = err

		var perr *jdoc.ProviderError
		if !errors.As(err, &perr) || !perr.Retryable() {
			return "", &jdoc.Error{Kind: jdoc.ErrGenerationFailed, Element: element, Err: err}
		}

		// Don't sleep after last attempt
		if attempt < c.maxAttempts {
			backoff := c.backoff(attempt)
			c.logger.Warn("generation retry", "element", element, "attempt", attempt, "backoff", backoff, "err", err)
			select {
			case <-ctx.Done():
				return "", canceled(element, ctx.Err())
			case <-time.After(backoff):
			}
		}
	}
	return "", &jdoc.Error{
		Kind:    jdoc.ErrGenerationFailed,
		Element: element,
		Err:     fmt.Errorf("%d attempts exhausted: %w", c.maxAttempts, lastErr),
	}
}

func canceled(element string, err error) error {
	return &jdoc.Error{Kind: jdoc.ErrCanceled, Element: element, Err: err}
}

// ExponentialBackoff returns base·2^(attempt-1), capped at maxDelay.
func ExponentialBackoff(base, maxDelay time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt && d < maxDelay; i++ {
			d *= 2
		}
		if maxDelay > 0 && d > maxDelay {
			d = maxDelay
		}
		return d
	}
}
