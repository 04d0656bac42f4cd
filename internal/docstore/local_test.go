package docstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSourceListAndOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "labor_law.json"), []byte(`{"document_id":"labor_law"}`), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	src, err := NewLocalSource(dir)
	require.NoError(t, err)

	names, err := src.List(context.Background())
	require.NoError(t, err)
	// 子目录不参与列表
	assert.Equal(t, []string{"labor_law.json"}, names)

	rc, err := src.Open(context.Background(), "labor_law.json")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "labor_law")
}

func TestNewLocalSourceErrors(t *testing.T) {
	_, err := NewLocalSource("/nonexistent/path")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = NewLocalSource(file)
	assert.Error(t, err)
}
