package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnsupportedType is returned for uploads outside the supported MIME set.
var ErrUnsupportedType = errors.New("unsupported file type")

// Intake validates and persists uploaded documents. Files land in a flat
// directory keyed by original filename; a same-named re-upload overwrites.
type Intake struct {
	dir string
}

// NewIntake creates a document intake writing into dir, creating it if needed.
func NewIntake(dir string) (*Intake, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating documents directory: %w", err)
	}
	return &Intake{dir: dir}, nil
}

// Accept validates the upload's MIME type, downloads and persists the file,
// and returns the document source to register. The MIME type is checked
// before any bytes are fetched; unsupported types return ErrUnsupportedType.
func (i *Intake) Accept(ctx context.Context, fileName, mimeType string, fetch func(ctx context.Context) ([]byte, error)) (Source, error) {
	kind, ok := KindForMIME(mimeType)
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	data, err := fetch(ctx)
	if err != nil {
		return Source{}, fmt.Errorf("downloading %s: %w", fileName, err)
	}

	// Base keeps uploads from escaping the documents directory.
	path := filepath.Join(i.dir, filepath.Base(fileName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Source{}, fmt.Errorf("persisting %s: %w", fileName, err)
	}

	return DocumentSource(path, kind), nil
}
