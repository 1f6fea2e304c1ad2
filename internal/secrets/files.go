package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	kerrors "github.com/PolarWolf314/keyage/internal/errors"
)

// EntrySuffix marks a file as an encrypted entry.
const EntrySuffix = ".age"

// ResolveEntryPath maps a name relative to rootPath onto its on-disk path.
func ResolveEntryPath(rootPath, name string) string {
	path := filepath.Join(rootPath, name)

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}

	base := filepath.Base(path)
	if filepath.Ext(base) == EntrySuffix && base != EntrySuffix {
		return path
	}
	return path + EntrySuffix
}

// IsConfined reports whether path lies inside rootPath once both are
// canonicalized. The root itself counts as inside.
func IsConfined(rootPath, path string) (bool, error) {
	_, inside, err := containment(rootPath, path)
	return inside, err
}

// IsEntryInStore reports whether name resolves to an existing regular file
// inside the store.
func IsEntryInStore(rootPath, name string) (bool, error) {
	return isEntry(rootPath, ResolveEntryPath(rootPath, name))
}

func isEntry(rootPath, path string) (bool, error) {
	inside, err := IsConfined(rootPath, path)
	if err != nil || !inside {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", kerrors.ErrStoreRead, err)
	}
	return info.Mode().IsRegular(), nil
}

// containment canonicalizes both sides and returns the canonical path.
func containment(rootPath, path string) (string, bool, error) {
	root, err := canonicalRoot(rootPath)
	if err != nil {
		return "", false, err
	}

	canonical, err := canonicalize(path)
	if err != nil {
		return "", false, err
	}

	return canonical, isWithin(root, canonical), nil
}

func canonicalRoot(rootPath string) (string, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrInvalidPath, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", kerrors.ErrStoreNotFound, abs)
		}
		return "", fmt.Errorf("%w: %v", kerrors.ErrInvalidPath, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: store root %s is not a directory", kerrors.ErrInvalidPath, abs)
	}

	return resolved, nil
}

// canonicalize evaluates symlinks in the deepest existing ancestor of path
// and appends the components that do not exist yet.
func canonicalize(path string) (string, error) {
	existing, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrInvalidPath, err)
	}

	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %v", kerrors.ErrInvalidPath, err)
		}

		// The path itself is present but its target is not.
		if _, lerr := os.Lstat(existing); lerr == nil {
			return "", fmt.Errorf("%w: %s is a broken symlink", kerrors.ErrInvalidPath, existing)
		}

		parent := filepath.Dir(existing)
		if parent == existing {
			return "", fmt.Errorf("%w: no existing ancestor for %s", kerrors.ErrInvalidPath, path)
		}
		missing = append([]string{filepath.Base(existing)}, missing...)
		existing = parent
	}
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}

// ListEntries returns the names of all entries under rootPath, relative and
// slash-separated with the suffix removed, sorted.
//
// An empty pattern matches everything. A pattern containing glob characters
// is matched with doublestar (so "team/**" works); any other pattern is a
// case-insensitive substring match.
func ListEntries(rootPath, pattern string) ([]string, error) {
	root, err := canonicalRoot(rootPath)
	if err != nil {
		return nil, err
	}

	isGlob := strings.ContainsAny(pattern, "*?[{")
	if isGlob && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: invalid pattern %q", kerrors.ErrInvalidPath, pattern)
	}

	var names []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Skip .keyage, .git and other hidden directories.
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), EntrySuffix) || d.Name() == EntrySuffix {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), EntrySuffix)

		if matchesEntry(name, pattern, isGlob) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrStoreRead, err)
	}

	sort.Strings(names)
	return names, nil
}

func matchesEntry(name, pattern string, isGlob bool) bool {
	if pattern == "" {
		return true
	}
	if isGlob {
		// The pattern was validated up front.
		ok, _ := doublestar.Match(pattern, name)
		return ok
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}
