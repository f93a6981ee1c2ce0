package script

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Filename grammars. Files matching neither are silently skipped.
var (
	forwardPattern  = regexp.MustCompile(`^V(\d+)__(.+)\.sql$`)  //nolint:gochecknoglobals // compiled once
	rollbackPattern = regexp.MustCompile(`^R(\d+)__(.+)\.sql$`) //nolint:gochecknoglobals // compiled once
)

// Repository locates migration and rollback scripts on a filesystem.
// Absolute paths read from disk; relative paths resolve against the
// working directory first and then against an optional fallback
// filesystem, typically an embed.FS shipping scripts inside the binary.
type Repository struct {
	path     string
	fallback fs.FS
}

// Option configures a Repository.
type Option func(*Repository)

// WithFallbackFS sets a filesystem consulted when the path is relative and
// does not exist on disk.
func WithFallbackFS(fsys fs.FS) Option {
	return func(r *Repository) { r.fallback = fsys }
}

// New creates a Repository rooted at path.
func New(path string, opts ...Option) *Repository {
	r := &Repository{path: path}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// root resolves the filesystem the scripts live on.
func (r *Repository) root() (fs.FS, error) {
	if filepath.IsAbs(r.path) {
		if _, err := os.Stat(r.path); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDirNotFound, r.path, err)
		}

		return os.DirFS(r.path), nil
	}

	if _, err := os.Stat(r.path); err == nil {
		return os.DirFS(r.path), nil
	}

	if r.fallback != nil {
		sub, err := fs.Sub(r.fallback, strings.TrimPrefix(r.path, "./"))
		if err == nil {
			if _, statErr := fs.Stat(sub, "."); statErr == nil {
				return sub, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrDirNotFound, r.path)
}

// Discover returns all forward scripts under the repository path, ordered
// ascending by numeric version. Files not matching the V-grammar are
// ignored; rollback scripts are loaded on demand via LoadRollback.
func (r *Repository) Discover() ([]Script, error) {
	fsys, err := r.root()
	if err != nil {
		return nil, err
	}

	var scripts []Script

	walkErr := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrDirNotFound, path, err)
		}

		if d.IsDir() {
			return nil
		}

		matches := forwardPattern.FindStringSubmatch(d.Name())
		if matches == nil {
			return nil
		}

		s, readErr := readScript(fsys, path, matches[1], KindForward)
		if readErr != nil {
			return readErr
		}

		scripts = append(scripts, s)

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.SliceStable(scripts, func(i, j int) bool {
		return scripts[i].Rank() < scripts[j].Rank()
	})

	return scripts, nil
}

// LoadRollback finds the single rollback script for the given version.
// Absence is not an error: found is false and the caller decides whether
// that is fatal.
func (r *Repository) LoadRollback(version string) (s Script, found bool, err error) {
	fsys, err := r.root()
	if err != nil {
		return Script{}, false, err
	}

	walkErr := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrDirNotFound, path, err)
		}

		if d.IsDir() || found {
			return nil
		}

		matches := rollbackPattern.FindStringSubmatch(d.Name())
		if matches == nil || matches[1] != version {
			return nil
		}

		loaded, readErr := readScript(fsys, path, matches[1], KindRollback)
		if readErr != nil {
			return readErr
		}

		s = loaded
		found = true

		return fs.SkipAll
	})
	if walkErr != nil && !errors.Is(walkErr, fs.SkipAll) {
		return Script{}, false, walkErr
	}

	return s, found, nil
}

func readScript(fsys fs.FS, path, version string, kind Kind) (Script, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Script{}, fmt.Errorf("%w: %s: %w", ErrScriptUnreadable, path, err)
	}

	sql := strings.TrimSpace(string(data))

	return Script{
		Version:  version,
		Filename: filepath.Base(path),
		SQL:      sql,
		Kind:     kind,
		Checksum: ComputeChecksum(sql),
	}, nil
}
