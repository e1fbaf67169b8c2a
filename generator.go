package jdoc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// TextGenerator is a text-generation capability. Failures are reported as
// *ProviderError where the provider allows classification.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// CommentGenerator produces the comment body for a request.
type CommentGenerator interface {
	// Generate returns normalized comment text without delimiters, or an
	// *Error classifying the failure.
	Generate(ctx context.Context, req CommentRequest) (string, error)
}

// RequestKey returns a stable key for everything that influences the text
// generated for req. Offsets are excluded so edits elsewhere in a file keep
// the key unchanged.
func RequestKey(req CommentRequest) string {
	data, _ := json.Marshal(struct {
		Kind          string
		Name          string
		Format        string
		Snippet       string
		Package       string
		EnclosingType string
	}{
		Kind:          req.Target.Kind.String(),
		Name:          req.Target.Name,
		Format:        req.Format.String(),
		Snippet:       req.Snippet,
		Package:       req.Context.Package,
		EnclosingType: req.Context.EnclosingType,
	})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
