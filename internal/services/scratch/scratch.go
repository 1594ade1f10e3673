// Package scratch stores an upload on disk for the lifetime of one request.
//
// Acquire writes the upload under a unique name; the caller defers Release
// right away so the file is removed on every exit path.
package scratch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// maxNameLen bounds the sanitized original filename kept in the scratch name.
const maxNameLen = 100

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Dir is a scratch directory.
type Dir struct {
	path string
	now  func() time.Time
}

// New creates the directory if needed.
func New(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create scratch dir %s: %w", path, err)
	}
	return &Dir{path: path, now: time.Now}, nil
}

// Path returns the directory location.
func (d *Dir) Path() string {
	return d.path
}

// File is a handle to one scratch file.
type File struct {
	Path string
	Size int64
}

// Acquire copies r into a new file named
// "<unix-nano timestamp>-<uuid>-<sanitized original name>".
// On error nothing is left behind.
func (d *Dir) Acquire(originalName string, r io.Reader) (*File, error) {
	name := strconv.FormatInt(d.now().UnixNano(), 10) + "-" + uuid.New().String() + "-" + SanitizeFilename(originalName)
	path := filepath.Join(d.path, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch file: %w", err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write scratch file: %w", err)
	}

	return &File{Path: path, Size: n}, nil
}

// ReadAll returns the file contents.
func (f *File) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch file: %w", err)
	}
	return data, nil
}

// Release removes the file. Errors are ignored: a leftover file is not worth
// failing the request over.
func (f *File) Release() {
	if f == nil {
		return
	}
	_ = os.Remove(f.Path)
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with "_".
func SanitizeFilename(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" || base == "." || base == "_" || base == "/" {
		base = "upload.pdf"
	}
	if len(base) > maxNameLen {
		base = base[len(base)-maxNameLen:]
	}
	return base
}
