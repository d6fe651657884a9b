package build

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArchive(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "b.txt"), "bee")
	writeFile(t, filepath.Join(src, "a", "z.txt"), "zed")
	writeFile(t, filepath.Join(src, "a", "b", "c.txt"), "sea")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0o755))

	dst := filepath.Join(t.TempDir(), "nested", "out.zip")
	size, err := WriteArchive(src, dst)
	require.NoError(t, err)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), size)

	r, err := zip.OpenReader(dst)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	contents := map[string]string{}
	for _, f := range r.File {
		names = append(names, f.Name)
		assert.True(t, f.Modified.Equal(archiveEpoch), "entry %s has modtime %v", f.Name, f.Modified)
		assert.Equal(t, zip.Deflate, f.Method)

		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		contents[f.Name] = string(data)
	}

	assert.Equal(t, []string{"a/b/c.txt", "a/z.txt", "b.txt"}, names)
	assert.Equal(t, map[string]string{"a/b/c.txt": "sea", "a/z.txt": "zed", "b.txt": "bee"}, contents)
}

func TestWriteArchive_SameTreeSameBytes(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "Shaders", "Glow.fx"), "glow")
	writeFile(t, filepath.Join(src, "collection.json"), "{}")

	first := filepath.Join(t.TempDir(), "one.zip")
	second := filepath.Join(t.TempDir(), "two.zip")
	_, err := WriteArchive(src, first)
	require.NoError(t, err)

	// Touch the sources so only stamped times could differ.
	later := archiveEpoch.AddDate(40, 0, 0)
	require.NoError(t, os.Chtimes(filepath.Join(src, "collection.json"), later, later))

	_, err = WriteArchive(src, second)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteArchive_MissingSource(t *testing.T) {
	t.Parallel()

	_, err := WriteArchive(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "out.zip"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
