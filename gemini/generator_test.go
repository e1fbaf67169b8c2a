package gemini_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/jdoc"
	"github.com/fwojciec/jdoc/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_GenerateText_ReturnsReply(t *testing.T) {
	t.Parallel()

	var gotModel, gotPrompt string
	var gotConfig *gemini.GenerateContentConfig
	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			gotModel = model
			gotPrompt = contents[0].Parts[0].Text
			gotConfig = config
			return &gemini.GenerateContentResponse{Text: "Adds two numbers.", FinishReason: "STOP"}, nil
		},
	}

	gen := gemini.NewGenerator(mockClient, "gemini-test")
	text, err := gen.GenerateText(context.Background(), "describe add", 300)

	require.NoError(t, err)
	assert.Equal(t, "Adds two numbers.", text)
	assert.Equal(t, "gemini-test", gotModel)
	assert.Equal(t, "describe add", gotPrompt)
	require.NotNil(t, gotConfig)
	assert.Equal(t, 300, gotConfig.MaxOutputTokens)
	assert.Empty(t, gotConfig.ThinkingLevel)
}

func TestGenerator_GenerateText_PropagatesProviderError(t *testing.T) {
	t.Parallel()

	expectedErr := &jdoc.ProviderError{Kind: jdoc.ProviderRateLimited, StatusCode: 429, Message: "slow down"}
	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			return nil, expectedErr
		},
	}

	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel)
	_, err := gen.GenerateText(context.Background(), "p", 100)

	require.Error(t, err)
	var perr *jdoc.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.True(t, perr.Retryable())
}

func TestGenerator_GenerateText_ReturnsErrorOnNilResponse(t *testing.T) {
	t.Parallel()

	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			return nil, nil
		},
	}

	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel)
	_, err := gen.GenerateText(context.Background(), "p", 100)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil response")
}

func TestGenerator_GenerateText_SafetyBlockIsNotRetryable(t *testing.T) {
	t.Parallel()

	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			return &gemini.GenerateContentResponse{FinishReason: gemini.FinishReasonSafety}, nil
		},
	}

	gen := gemini.NewGenerator(mockClient, gemini.DefaultModel)
	_, err := gen.GenerateText(context.Background(), "p", 100)

	var perr *jdoc.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.False(t, perr.Retryable())
}

func TestGenerator_SetThinkingLevel(t *testing.T) {
	t.Parallel()

	var level string
	mockClient := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			level = config.ThinkingLevel
			return &gemini.GenerateContentResponse{Text: "ok"}, nil
		},
	}

	gen := gemini.NewGenerator(mockClient, "")
	gen.SetThinkingLevel("low")
	_, err := gen.GenerateText(context.Background(), "p", 100)

	require.NoError(t, err)
	assert.Equal(t, "LOW", level)
	assert.Equal(t, gemini.DefaultModel, gen.Model())
}

func TestBuildConfig_SetsTemperature(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig(100)

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.2, *config.Temperature, 0.001)
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig(100)

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Equal(t, jdoc.SystemInstruction, config.SystemInstruction.Parts[0].Text)
}
