package dir

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "acme-realm.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "acme-users-0.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "acme-users-1.json"), []byte(`{}`), 0o644))

	s := New(root)

	names, err := s.List(ctx)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"acme-realm.json", "acme-users-0.json"}, names)
}

func TestList_MissingDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent"))

	names, err := s.List(context.Background())

	assert.Error(t, err)
	assert.Nil(t, names)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "acme-realm.json"), []byte(`{"groups":[]}`), 0o644))

	s := New(root)

	rc, err := s.Open(ctx, "acme-realm.json")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"groups":[]}`, string(data))
}

func TestOpen_MissingFile(t *testing.T) {
	s := New(t.TempDir())

	rc, err := s.Open(context.Background(), "absent.json")

	assert.Error(t, err)
	assert.Nil(t, rc)
}
