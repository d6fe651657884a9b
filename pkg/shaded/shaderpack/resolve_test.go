package shaderpack

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyToOutput(t *testing.T) {
	t.Parallel()

	t.Run("copies bytes and creates parents", func(t *testing.T) {
		t.Parallel()
		in := t.TempDir()
		out := t.TempDir()
		writeFile(t, filepath.Join(in, "src", "Glow.fx"), "float4 main() {}")

		err := CopyToOutput(FileDeclaration{Source: "src/Glow.fx", Output: "deep/nested/Glow.fx"}, in, out)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(out, "deep", "nested", "Glow.fx"))
		require.NoError(t, err)
		assert.Equal(t, "float4 main() {}", string(data))
	})

	t.Run("preserves permission bits", func(t *testing.T) {
		t.Parallel()
		in := t.TempDir()
		out := t.TempDir()
		src := filepath.Join(in, "tool.addon")
		writeFile(t, src, "bin")
		require.NoError(t, os.Chmod(src, 0o755))

		require.NoError(t, CopyToOutput(FileDeclaration{Source: "tool.addon", Output: "tool.addon"}, in, out))

		info, err := os.Stat(filepath.Join(out, "tool.addon"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	})

	t.Run("trims whitespace around source", func(t *testing.T) {
		t.Parallel()
		in := t.TempDir()
		out := t.TempDir()
		writeFile(t, filepath.Join(in, "a.fx"), "a")

		require.NoError(t, CopyToOutput(FileDeclaration{Source: " a.fx ", Output: "a.fx"}, in, out))
		assert.FileExists(t, filepath.Join(out, "a.fx"))
	})

	t.Run("overwrites existing output", func(t *testing.T) {
		t.Parallel()
		in := t.TempDir()
		out := t.TempDir()
		writeFile(t, filepath.Join(in, "a.fx"), "new")
		writeFile(t, filepath.Join(out, "a.fx"), "old content that is longer")

		require.NoError(t, CopyToOutput(FileDeclaration{Source: "a.fx", Output: "a.fx"}, in, out))

		data, err := os.ReadFile(filepath.Join(out, "a.fx"))
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})
}

func TestCopyToOutput_Errors(t *testing.T) {
	t.Parallel()

	t.Run("source not found", func(t *testing.T) {
		t.Parallel()
		err := CopyToOutput(FileDeclaration{Source: "missing.fx", Output: "missing.fx"}, t.TempDir(), t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceNotFound)
		assert.ErrorIs(t, err, os.ErrNotExist)

		var copyErr *CopyError
		require.True(t, errors.As(err, &copyErr))
		assert.Equal(t, ErrSourceNotFound, copyErr.Kind)
	})

	t.Run("output resolves to a root", func(t *testing.T) {
		t.Parallel()
		in := t.TempDir()
		writeFile(t, filepath.Join(in, "a.fx"), "a")

		err := CopyToOutput(FileDeclaration{Source: "a.fx", Output: ""}, in, string(filepath.Separator))
		assert.ErrorIs(t, err, ErrNoParentPath)
	})

	t.Run("parent is a file", func(t *testing.T) {
		t.Parallel()
		in := t.TempDir()
		out := t.TempDir()
		writeFile(t, filepath.Join(in, "a.fx"), "a")
		writeFile(t, filepath.Join(out, "blocker"), "not a dir")

		err := CopyToOutput(FileDeclaration{Source: "a.fx", Output: "blocker/a.fx"}, in, out)
		assert.ErrorIs(t, err, ErrDirectoryCreateFailed)
	})

	t.Run("source is a directory", func(t *testing.T) {
		t.Parallel()
		in := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(in, "dir.fx"), 0o755))

		err := CopyToOutput(FileDeclaration{Source: "dir.fx", Output: "dir.fx"}, in, t.TempDir())
		assert.ErrorIs(t, err, ErrCopyFailed)
	})
}

func TestCopyError_Message(t *testing.T) {
	t.Parallel()

	err := &CopyError{Kind: ErrNoParentPath, Path: "/"}
	assert.Equal(t, "output path has no parent directory: /", err.Error())

	err = &CopyError{Kind: ErrCopyFailed, Path: "/out/a.fx", Err: os.ErrPermission}
	assert.Equal(t, "failed to copy file: /out/a.fx: permission denied", err.Error())
	assert.ErrorIs(t, err, os.ErrPermission)
}
