// Package extract resolves draft/final references to document text. The
// engine compares text it did not author; an Extractor turns the opaque
// references carried by a compare request into the strings to diff.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a reference escapes the documents root.
var ErrOutsideRoot = errors.New("reference resolves outside the documents directory")

// Extractor resolves a document reference to plain text.
type Extractor interface {
	Extract(ctx context.Context, ref string) (string, error)
}

// Inline treats the reference itself as the document text. Used when the
// caller already holds both texts and just wants them compared.
type Inline struct{}

// Extract returns the reference verbatim.
func (Inline) Extract(_ context.Context, ref string) (string, error) {
	return ref, nil
}

// FileExtractor reads plain-text documents from a fixed root directory.
// References are relative paths; anything resolving outside the root is
// rejected.
type FileExtractor struct {
	root string
}

// NewFileExtractor creates a file extractor rooted at dir.
func NewFileExtractor(dir string) (*FileExtractor, error) {
	if dir == "" {
		return nil, errors.New("documents directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve documents directory: %w", err)
	}
	return &FileExtractor{root: abs}, nil
}

// Root returns the absolute documents root.
func (e *FileExtractor) Root() string {
	return e.root
}

// Extract reads the referenced file. The reference must stay inside the
// root after cleaning; absolute references and ".." escapes are rejected.
func (e *FileExtractor) Extract(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ref == "" {
		return "", errors.New("document reference is empty")
	}
	if filepath.IsAbs(ref) {
		return "", ErrOutsideRoot
	}

	path := filepath.Join(e.root, filepath.Clean(ref))
	if path != e.root && !strings.HasPrefix(path, e.root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document %s: %w", ref, err)
	}
	return string(data), nil
}
