// Package gemini implements jdoc.TextGenerator on Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/jdoc"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Client wraps the Gemini genai.Client.
type Client struct {
	client *genai.Client
}

// NewClient creates a new Client with the given API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

// Close is a no-op for the new genai SDK (no cleanup needed).
func (c *Client) Close() error {
	return nil
}

// GenerateContent implements GenerativeClient by delegating to the genai.Client.
func (c *Client) GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error) {
	genaiContents := make([]*genai.Content, len(contents))
	for i, content := range contents {
		genaiContents[i] = toGenai(content, "user")
	}

	genaiConfig := &genai.GenerateContentConfig{
		Temperature: config.Temperature,
	}
	if config.MaxOutputTokens > 0 {
		genaiConfig.MaxOutputTokens = int32(config.MaxOutputTokens)
	}
	if config.SystemInstruction != nil {
		genaiConfig.SystemInstruction = toGenai(config.SystemInstruction, "")
	}
	if config.ThinkingLevel != "" {
		genaiConfig.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingLevel: genai.ThinkingLevel(config.ThinkingLevel),
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, model, genaiContents, genaiConfig)
	if err != nil {
		return nil, wrapAPIError(err)
	}

	resp := &GenerateContentResponse{Text: result.Text()}
	if len(result.Candidates) > 0 {
		resp.FinishReason = string(result.Candidates[0].FinishReason)
	}
	return resp, nil
}

func toGenai(content *Content, role string) *genai.Content {
	parts := make([]*genai.Part, len(content.Parts))
	for i, part := range content.Parts {
		parts[i] = &genai.Part{Text: part.Text}
	}
	return &genai.Content{Role: role, Parts: parts}
}

// wrapAPIError converts genai.APIError to a jdoc.ProviderError so the
// generation client can decide whether to retry. Errors without a status,
// such as dropped connections, are treated as transient.
func wrapAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return &jdoc.ProviderError{
			Kind:       jdoc.ProviderKindForStatus(apiErr.Code),
			StatusCode: apiErr.Code,
			Message:    fmt.Sprintf("gemini: %s", apiErr.Message),
		}
	}
	return &jdoc.ProviderError{
		Kind:    jdoc.ProviderTransient,
		Message: fmt.Sprintf("gemini: %v", err),
	}
}

// Compile-time check that Client implements GenerativeClient.
var _ GenerativeClient = (*Client)(nil)
