package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var _ jdoc.CommentGenerator = (*Generator)(nil)

// Generator wraps a CommentGenerator with file-based caching. Only
// successful results are cached.
type Generator struct {
	inner     jdoc.CommentGenerator
	cacheDir  string
	namespace string
}

// NewGenerator creates a new caching generator. namespace separates
// entries produced under different settings, such as model or language.
func NewGenerator(inner jdoc.CommentGenerator, cacheDir, namespace string) *Generator {
	return &Generator{
		inner:     inner,
		cacheDir:  cacheDir,
		namespace: namespace,
	}
}

type cacheEntry struct {
	Text string `json:"text"`
}

// Generate returns a cached comment or delegates to the inner generator.
func (g *Generator) Generate(ctx context.Context, req jdoc.CommentRequest) (string, error) {
	hash := g.hashRequest(req)

	// Check cache
	if cached, err := g.loadFromCache(hash); err == nil {
		return cached, nil
	}

	// Cache miss - delegate to inner
	text, err := g.inner.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	// Store in cache (best-effort)
	_ = g.saveToCache(hash, text)

	return text, nil
}

func (g *Generator) hashRequest(req jdoc.CommentRequest) string {
	sum := sha256.Sum256([]byte(g.namespace + "\x00" + jdoc.RequestKey(req)))
	return hex.EncodeToString(sum[:])
}

func (g *Generator) cachePath(hash string) string {
	return filepath.Join(g.cacheDir, hash[:2], hash+".json")
}

func (g *Generator) loadFromCache(hash string) (string, error) {
	data, err := os.ReadFile(g.cachePath(hash))
	if err != nil {
		return "", err
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", err
	}
	if entry.Text == "" {
		return "", os.ErrNotExist
	}
	return entry.Text, nil
}

func (g *Generator) saveToCache(hash, text string) error {
	path := g.cachePath(hash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(cacheEntry{Text: text})
	if err != nil {
		return err
	}

	return writeAtomic(path, data, 0o644)
}
