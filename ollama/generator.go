// Package ollama implements jdoc.TextGenerator on a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/jdoc"
	"github.com/ollama/ollama/api"
)

// Compile-time interface verification.
var _ jdoc.TextGenerator = (*Generator)(nil)

// DefaultModel is the Ollama model used when none is configured.
const DefaultModel = "qwen2.5-coder:7b"

// ModelPrefix marks a configured model name as an Ollama model.
const ModelPrefix = "ollama:"

// Client is the subset of the Ollama API client used by Generator.
type Client interface {
	Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error
}

// NewClient creates a client from OLLAMA_HOST, falling back to the local
// default address.
func NewClient() (*api.Client, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("could not create ollama client: %w", err)
	}
	return client, nil
}

// Generator implements jdoc.TextGenerator using Ollama.
type Generator struct {
	client      Client
	model       string
	temperature float64
}

// NewGenerator creates a new Generator. The "ollama:" prefix is stripped
// from model.
func NewGenerator(client Client, model string) *Generator {
	model = strings.TrimPrefix(model, ModelPrefix)
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model, temperature: 0.2}
}

// GenerateText sends prompt to Ollama and returns the complete reply.
func (g *Generator) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		System: jdoc.SystemInstruction,
		Stream: &stream,
		Options: map[string]any{
			"temperature": g.temperature,
			"num_predict": maxTokens,
		},
	}

	var b strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		b.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}
	return b.String(), nil
}

// wrapError maps Ollama failures to jdoc.ProviderError. A missing model is
// permanent; an unreachable server is transient.
func wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return &jdoc.ProviderError{
			Kind:       jdoc.ProviderKindForStatus(statusErr.StatusCode),
			StatusCode: statusErr.StatusCode,
			Message:    fmt.Sprintf("ollama: %s", statusErr.ErrorMessage),
		}
	}
	return &jdoc.ProviderError{
		Kind:    jdoc.ProviderTransient,
		Message: fmt.Sprintf("ollama: %v", err),
	}
}
