package catalog

import "context"

// Loader is the interface for a format-specific catalog loader.
type Loader interface {
	// Load reads every catalog file found under the given paths (files or
	// directories) and merges them into one model.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// Parse decodes a single in-memory catalog document. filename is used
	// for diagnostics only.
	Parse(ctx context.Context, filename string, src []byte) (*Model, error)

	// Extensions lists the file extensions this loader understands.
	Extensions() []string
}
