// Package dir reads export files from a local directory.
package dir

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/idmigrate/keycloak-descope/internal/model"
)

var _ model.ExportSource = (*Source)(nil)

// Source lists and opens files in one flat directory.
// Subdirectories are not descended into.
type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

// List returns the names of the regular files in the directory.
func (s *Source) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// Open opens one file by its listed name.
func (s *Source) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.path, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}

	return f, nil
}
