package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var _ jdoc.TextGenerator = (*Generator)(nil)

// DefaultTemperature keeps comments close to the code they describe.
const DefaultTemperature = float32(0.2)

// FinishReasonSafety is reported when Gemini withholds a response.
const FinishReasonSafety = "SAFETY"

// Generator implements jdoc.TextGenerator using Google Gemini.
type Generator struct {
	client        GenerativeClient
	model         string
	thinkingLevel string
}

// NewGenerator creates a new Generator.
func NewGenerator(client GenerativeClient, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Model returns the model name requests are sent to.
func (g *Generator) Model() string {
	return g.model
}

// SetThinkingLevel sets the thinking level sent with each request.
// An empty level leaves the model default.
func (g *Generator) SetThinkingLevel(level string) {
	g.thinkingLevel = strings.ToUpper(level)
}

// GenerateText sends prompt to Gemini and returns the raw reply.
func (g *Generator) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	contents := []*Content{{
		Parts: []*Part{{Text: prompt}},
	}}

	config := BuildConfig(maxTokens)
	config.ThinkingLevel = g.thinkingLevel

	resp, err := g.client.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", &jdoc.ProviderError{Kind: jdoc.ProviderUnknown, Message: "gemini: returned nil response"}
	}
	if resp.Text == "" && resp.FinishReason == FinishReasonSafety {
		return "", &jdoc.ProviderError{Kind: jdoc.ProviderInvalidRequest, Message: "gemini: response blocked by safety filters"}
	}
	return resp.Text, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig(maxTokens int) *GenerateContentConfig {
	temp := DefaultTemperature
	return &GenerateContentConfig{
		SystemInstruction: &Content{
			Parts: []*Part{{Text: jdoc.SystemInstruction}},
		},
		Temperature:     &temp,
		MaxOutputTokens: maxTokens,
	}
}

// GenerativeClient abstracts the Gemini API for testing.
type GenerativeClient interface {
	GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error)
}

// Content represents a message in a Gemini conversation.
type Content struct {
	Parts []*Part
}

// Part represents a part of a message.
type Part struct {
	Text string
}

// GenerateContentConfig holds configuration for content generation.
type GenerateContentConfig struct {
	SystemInstruction *Content
	Temperature       *float32
	MaxOutputTokens   int
	ThinkingLevel     string // "", "MINIMAL", "LOW", "MEDIUM", "HIGH"
}

// GenerateContentResponse holds the response from content generation.
type GenerateContentResponse struct {
	Text         string
	FinishReason string
}

// MockGenerativeClient is a mock implementation of GenerativeClient for testing.
type MockGenerativeClient struct {
	GenerateContentFn func(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error)
}

func (m *MockGenerativeClient) GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error) {
	return m.GenerateContentFn(ctx, model, contents, config)
}
