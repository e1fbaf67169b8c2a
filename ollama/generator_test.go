package ollama_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fwojciec/jdoc"
	"github.com/fwojciec/jdoc/ollama"
	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	GenerateFn func(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error
}

func (c *fakeClient) Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error {
	return c.GenerateFn(ctx, req, fn)
}

func TestGenerator_GenerateText_JoinsChunks(t *testing.T) {
	t.Parallel()

	var got *api.GenerateRequest
	client := &fakeClient{
		GenerateFn: func(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error {
			got = req
			for _, chunk := range []string{"Adds ", "two ", "numbers."} {
				if err := fn(api.GenerateResponse{Response: chunk}); err != nil {
					return err
				}
			}
			return fn(api.GenerateResponse{Done: true})
		},
	}

	gen := ollama.NewGenerator(client, "ollama:codellama")
	text, err := gen.GenerateText(context.Background(), "describe add", 200)

	require.NoError(t, err)
	assert.Equal(t, "Adds two numbers.", text)
	require.NotNil(t, got)
	assert.Equal(t, "codellama", got.Model)
	assert.Equal(t, "describe add", got.Prompt)
	assert.Equal(t, jdoc.SystemInstruction, got.System)
	require.NotNil(t, got.Stream)
	assert.False(t, *got.Stream)
	assert.Equal(t, 200, got.Options["num_predict"])
}

func TestGenerator_DefaultModel(t *testing.T) {
	t.Parallel()

	var model string
	client := &fakeClient{
		GenerateFn: func(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error {
			model = req.Model
			return nil
		},
	}

	_, err := ollama.NewGenerator(client, "").GenerateText(context.Background(), "p", 10)

	require.NoError(t, err)
	assert.Equal(t, ollama.DefaultModel, model)
}

func TestGenerator_GenerateText_MapsErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		err       error
		kind      jdoc.ProviderErrorKind
		retryable bool
	}{
		{"missing model", api.StatusError{StatusCode: http.StatusNotFound, ErrorMessage: "model not found"}, jdoc.ProviderInvalidRequest, false},
		{"overloaded", api.StatusError{StatusCode: http.StatusServiceUnavailable, ErrorMessage: "busy"}, jdoc.ProviderTransient, true},
		{"connection refused", errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), jdoc.ProviderTransient, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeClient{
				GenerateFn: func(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error {
					return tc.err
				},
			}

			_, err := ollama.NewGenerator(client, "m").GenerateText(context.Background(), "p", 10)

			var perr *jdoc.ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.kind, perr.Kind)
			assert.Equal(t, tc.retryable, perr.Retryable())
		})
	}
}

func TestGenerator_GenerateText_PassesCancellation(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		GenerateFn: func(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error {
			return ctx.Err()
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ollama.NewGenerator(client, "m").GenerateText(ctx, "p", 10)

	assert.ErrorIs(t, err, context.Canceled)
}
