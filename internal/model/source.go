package model

import (
	"context"
	"io"
)

// ExportSource lists and opens export files from a single directory-like
// location. Listing is flat: implementations never recurse into
// subdirectories or nested prefixes.
type ExportSource interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
