package build

import (
	"io"
	"os"
	"path/filepath"

	"github.com/nickng/loopswap/ssa"
	"github.com/pkg/errors"
)

// Builder builds SSA IR and metainfo.
type Builder interface {
	Build() (*ssa.Info, error)
}

// FileSrc is a set of filenames.
type FileSrc struct {
	Files []string
}

// FromFiles returns a non-nil Builder from a slice of filenames.
func FromFiles(files ...string) Configurer {
	return newConfig(&FileSrc{Files: files})
}

// files returns the absolute paths of the files and their directory.
func (s *FileSrc) files() (string, []string, func(), error) {
	if len(s.Files) == 0 {
		return "", nil, nil, errors.New("no source file")
	}
	var abs []string
	for _, f := range s.Files {
		a, err := filepath.Abs(f)
		if err != nil {
			return "", nil, nil, errors.Wrapf(err, "bad source file: %s", f)
		}
		abs = append(abs, a)
	}
	return filepath.Dir(abs[0]), abs, func() {}, nil
}

// CachedSrc is source file from a reader.
type CachedSrc struct {
	cached []byte
}

// FromReader returns a non-nil Builder for a reader.
// This is typically used for testing or building a temporary file.
func FromReader(r io.Reader) Configurer {
	b, err := io.ReadAll(r)
	c := newConfig(&CachedSrc{cached: b})
	if err != nil {
		c.err = errors.Wrap(err, "failed to read from reader")
	}
	return c
}

// files writes the cached source to a temporary file, removed by the
// returned cleanup function.
func (s *CachedSrc) files() (string, []string, func(), error) {
	dir, err := os.MkdirTemp("", "loopswap")
	if err != nil {
		return "", nil, nil, errors.Wrap(err, "cannot create temporary directory")
	}
	cleanup := func() { os.RemoveAll(dir) }
	tmp := filepath.Join(dir, "tmp.go")
	if err := os.WriteFile(tmp, s.cached, 0644); err != nil {
		cleanup()
		return "", nil, nil, errors.Wrap(err, "cannot write temporary file")
	}
	return dir, []string{tmp}, cleanup, nil
}
