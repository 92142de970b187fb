// Package fsutil guards filesystem access for stores that map resource
// addresses onto directory trees. Address segments become path
// segments, so every derived path has to be confined to the store's
// base directory even when symlinks sit in between.
package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IsPathUnderRoot reports whether candidate stays inside root once
// existing symlink components are resolved on both sides. Store writes
// and deletes must refuse any derived path for which this is false.
func IsPathUnderRoot(root string, candidate string) bool {
	resolvedRoot, err := resolveExistingPrefix(root)
	if err != nil {
		return false
	}
	resolvedCandidate, err := resolveExistingPrefix(candidate)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(resolvedRoot, resolvedCandidate)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// CleanupEmptyParents removes startDir and then each now-empty ancestor
// up to, but never including, rootDir. Deleting the snapshot for
// /redfish/v1/Systems/1 this way also drops the Systems/1 directories
// once nothing else lives under them; a non-empty ancestor ends the
// walk without error.
func CleanupEmptyParents(startDir string, rootDir string) error {
	current := filepath.Clean(startDir)
	root := filepath.Clean(rootDir)

	for current != root && current != "." && current != string(filepath.Separator) {
		if err := os.Remove(current); err != nil {
			if removalIsTerminal(err) {
				return nil
			}
			return err
		}
		current = filepath.Dir(current)
	}
	return nil
}

// removalIsTerminal classifies the errors that end the upward walk
// cleanly: the directory is already gone, or it still has entries.
func removalIsTerminal(err error) bool {
	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, fs.ErrInvalid) {
		return true
	}
	return errors.Is(err, fs.ErrExist) || strings.Contains(err.Error(), "not empty")
}

// resolveExistingPrefix evaluates symlinks over the components of path
// that exist and appends the not-yet-created remainder lexically.
// Derived snapshot paths usually do not exist before the first Save, so
// plain EvalSymlinks would fail exactly when the guard is needed most.
func resolveExistingPrefix(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if cleaned == "." {
		return cleaned, nil
	}

	volume := filepath.VolumeName(cleaned)
	remainder := strings.TrimPrefix(cleaned, volume)
	separator := string(filepath.Separator)

	resolved := ""
	switch {
	case strings.HasPrefix(remainder, separator):
		resolved = volume + separator
		remainder = strings.TrimPrefix(remainder, separator)
	case volume != "":
		resolved = volume
	}

	segments := strings.FieldsFunc(remainder, func(r rune) bool {
		return r == rune(filepath.Separator)
	})
	if len(segments) == 0 {
		if resolved == "" {
			return cleaned, nil
		}
		return filepath.Clean(resolved), nil
	}

	for idx, segment := range segments {
		next := filepath.Join(resolved, segment)

		info, err := os.Lstat(next)
		if errors.Is(err, os.ErrNotExist) {
			// First missing component; everything after it is kept as-is.
			if idx < len(segments)-1 {
				next = filepath.Join(next, filepath.Join(segments[idx+1:]...))
			}
			return filepath.Clean(next), nil
		}
		if err != nil {
			return "", err
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(next)
			if err != nil {
				return "", err
			}
			resolved = target
			continue
		}
		resolved = next
	}

	if resolved == "" {
		return cleaned, nil
	}
	return filepath.Clean(resolved), nil
}
