// Package mock provides test doubles for jdoc interfaces.
package mock

import (
	"context"

	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var (
	_ jdoc.TextGenerator    = (*TextGenerator)(nil)
	_ jdoc.CommentGenerator = (*CommentGenerator)(nil)
)

// TextGenerator is a mock implementation of jdoc.TextGenerator.
type TextGenerator struct {
	GenerateTextFn func(ctx context.Context, prompt string, maxTokens int) (string, error)
}

func (g *TextGenerator) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return g.GenerateTextFn(ctx, prompt, maxTokens)
}

// CommentGenerator is a mock implementation of jdoc.CommentGenerator.
type CommentGenerator struct {
	GenerateFn func(ctx context.Context, req jdoc.CommentRequest) (string, error)
}

func (g *CommentGenerator) Generate(ctx context.Context, req jdoc.CommentRequest) (string, error) {
	return g.GenerateFn(ctx, req)
}
