package shaderpack

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for each way CopyToOutput can fail. A *CopyError matches
// the sentinel of its Kind with errors.Is.
var (
	ErrSourceNotFound        = errors.New("source file not found")
	ErrNoParentPath          = errors.New("output path has no parent directory")
	ErrDirectoryCreateFailed = errors.New("failed to create output directories")
	ErrCopyFailed            = errors.New("failed to copy file")
)

// CopyError describes a failed CopyToOutput call.
type CopyError struct {
	// Kind is one of the Err* sentinels in this package.
	Kind error
	// Path is the path the failing step operated on.
	Path string
	// Err is the underlying I/O error, if any.
	Err error
}

func (e *CopyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Path)
}

// Unwrap exposes both the kind and the underlying error to errors.Is/As.
func (e *CopyError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// CopyToOutput copies the file declared by d from inputBaseDir into
// outputBaseDir, creating any missing directories along the way.
//
// The output path is NOT checked for escapes: an Output such as "../x" is
// joined as-is and can land outside outputBaseDir. Callers that handle
// untrusted manifests must run them through the validator first.
func CopyToOutput(d FileDeclaration, inputBaseDir, outputBaseDir string) error {
	sourcePath, err := Canonicalize(filepath.Join(inputBaseDir, strings.TrimSpace(d.Source)))
	if err != nil {
		return &CopyError{Kind: ErrSourceNotFound, Path: filepath.Join(inputBaseDir, d.Source), Err: err}
	}

	outputPath := filepath.Join(outputBaseDir, d.Output)
	parent := filepath.Dir(outputPath)
	if parent == outputPath {
		return &CopyError{Kind: ErrNoParentPath, Path: outputPath}
	}

	if err := os.MkdirAll(parent, 0o755); err != nil {
		return &CopyError{Kind: ErrDirectoryCreateFailed, Path: parent, Err: err}
	}

	if err := copyFile(sourcePath, outputPath); err != nil {
		return &CopyError{Kind: ErrCopyFailed, Path: outputPath, Err: err}
	}
	return nil
}

// copyFile copies src to dst byte for byte and carries over the permission bits.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return nil
}
