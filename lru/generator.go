// Package lru provides an in-memory response cache backed by
// hashicorp/golang-lru.
package lru

import (
	"context"

	"github.com/fwojciec/jdoc"
	lrulib "github.com/hashicorp/golang-lru/v2"
)

// Compile-time interface verification.
var _ jdoc.CommentGenerator = (*Generator)(nil)

// DefaultSize is the number of responses kept when no size is given.
const DefaultSize = 1024

// Generator wraps a CommentGenerator with a bounded in-memory cache keyed by
// jdoc.RequestKey. Identical declarations seen twice in one run, such as
// overloads copied between files, reach the provider once. Only successful
// results are cached.
type Generator struct {
	inner jdoc.CommentGenerator
	cache *lrulib.Cache[string, string]
}

// NewGenerator creates a caching generator holding up to size entries.
func NewGenerator(inner jdoc.CommentGenerator, size int) (*Generator, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lrulib.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Generator{inner: inner, cache: cache}, nil
}

// Generate returns a cached comment or delegates to the inner generator.
func (g *Generator) Generate(ctx context.Context, req jdoc.CommentRequest) (string, error) {
	key := jdoc.RequestKey(req)
	if text, ok := g.cache.Get(key); ok {
		return text, nil
	}

	text, err := g.inner.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	g.cache.Add(key, text)
	return text, nil
}

// Len returns the number of cached responses.
func (g *Generator) Len() int {
	return g.cache.Len()
}
