package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRemove(t *testing.T) {
	store := NewEvidenceStore(t.TempDir())

	path, err := store.Save(1, 7, "nota-fiscal.pdf", []byte("conteudo"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, filepath.Join("1", "7")+string(os.PathSeparator)))
	assert.True(t, strings.HasSuffix(path, "_nota-fiscal.pdf"))

	require.NoError(t, store.Remove(path))
	// Removing twice is not an error; the database row is authoritative.
	require.NoError(t, store.Remove(path))
}

func TestSaveNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	store := NewEvidenceStore(dir)

	first, err := store.Save(1, 7, "laudo.png", []byte("a"))
	require.NoError(t, err)
	second, err := store.Save(1, 7, "laudo.png", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	data, err := os.ReadFile(filepath.Join(dir, first))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestSaveSanitizesClientFileName(t *testing.T) {
	dir := t.TempDir()
	store := NewEvidenceStore(dir)

	path, err := store.Save(1, 7, "../../etc/passwd", []byte("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, filepath.Join("1", "7")+string(os.PathSeparator)),
		"a path-traversal name must stay inside the justification directory")
	assert.True(t, strings.HasSuffix(path, "_passwd"))

	path, err = store.Save(1, 7, "..", []byte("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_evidence"))
}
