// Package fsstore keeps inventory snapshots as JSON files under a base
// directory, one directory per resource address.
package fsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rackfish/rackfish/faults"
	"github.com/rackfish/rackfish/internal/providers/shared/fsutil"
	"github.com/rackfish/rackfish/inventory"
	"github.com/rackfish/rackfish/payload"
)

var _ inventory.Store = (*FilesystemInventoryStore)(nil)
var _ inventory.Lifecycle = (*FilesystemInventoryStore)(nil)

const snapshotFileName = "resource.json"

type FilesystemInventoryStore struct {
	baseDir string
}

func NewFilesystemInventoryStore(baseDir string) *FilesystemInventoryStore {
	return &FilesystemInventoryStore{baseDir: filepath.Clean(baseDir)}
}

func (s *FilesystemInventoryStore) Init(context.Context) error {
	if s.baseDir == "" {
		return validationError("inventory base directory must not be empty", nil)
	}
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return internalError("failed to initialize inventory directory", err)
	}
	return nil
}

func (s *FilesystemInventoryStore) Check(context.Context) error {
	info, err := os.Stat(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return notFoundError("inventory base directory does not exist")
		}
		return internalError("failed to inspect inventory base directory", err)
	}
	if !info.IsDir() {
		return validationError("inventory base directory is not a directory", nil)
	}
	return nil
}

func (s *FilesystemInventoryStore) Save(_ context.Context, address string, value payload.Value) error {
	normalizedAddress, err := inventory.NormalizeAddress(address)
	if err != nil {
		return err
	}

	normalizedValue, err := payload.Normalize(value)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(normalizedValue, "", "  ")
	if err != nil {
		return internalError("failed to encode snapshot", err)
	}

	targetPath, err := s.snapshotFilePath(normalizedAddress)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return internalError("failed to create snapshot directory", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(targetPath), ".rackfish-tmp-*")
	if err != nil {
		return internalError("failed to create temporary snapshot file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(encoded); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to write snapshot", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to finalize snapshot", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to replace snapshot file", err)
	}

	return nil
}

func (s *FilesystemInventoryStore) Get(_ context.Context, address string) (payload.Value, error) {
	normalizedAddress, err := inventory.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	targetPath, err := s.snapshotFilePath(normalizedAddress)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundError(fmt.Sprintf("snapshot %q not found", normalizedAddress))
		}
		return nil, internalError("failed to read snapshot", err)
	}

	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()

	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, validationError("invalid snapshot payload", err)
	}
	return payload.Normalize(decoded)
}

func (s *FilesystemInventoryStore) Delete(_ context.Context, address string) error {
	normalizedAddress, err := inventory.NormalizeAddress(address)
	if err != nil {
		return err
	}

	targetPath, err := s.snapshotFilePath(normalizedAddress)
	if err != nil {
		return err
	}

	if err := os.Remove(targetPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return notFoundError(fmt.Sprintf("snapshot %q not found", normalizedAddress))
		}
		return internalError("failed to delete snapshot", err)
	}

	_ = fsutil.CleanupEmptyParents(filepath.Dir(targetPath), s.baseDir)
	return nil
}

func (s *FilesystemInventoryStore) Exists(_ context.Context, address string) (bool, error) {
	normalizedAddress, err := inventory.NormalizeAddress(address)
	if err != nil {
		return false, err
	}

	targetPath, err := s.snapshotFilePath(normalizedAddress)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(targetPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, internalError("failed to inspect snapshot", err)
	}
	return true, nil
}

// List returns the addresses of all stored snapshots in sorted order.
func (s *FilesystemInventoryStore) List(_ context.Context) ([]string, error) {
	addresses := []string{}

	err := filepath.WalkDir(s.baseDir, func(walkPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, os.ErrNotExist) && walkPath == s.baseDir {
				return filepath.SkipAll
			}
			return walkErr
		}
		if entry.IsDir() || entry.Name() != snapshotFileName {
			return nil
		}

		relative, relErr := filepath.Rel(s.baseDir, filepath.Dir(walkPath))
		if relErr != nil {
			return relErr
		}
		addresses = append(addresses, "/"+filepath.ToSlash(relative))
		return nil
	})
	if err != nil {
		return nil, internalError("failed to list snapshots", err)
	}

	sort.Strings(addresses)
	return addresses, nil
}

func (s *FilesystemInventoryStore) snapshotFilePath(address string) (string, error) {
	if s.baseDir == "" {
		return "", validationError("inventory base directory must not be empty", nil)
	}

	relative := strings.TrimPrefix(address, "/")
	filePath := filepath.Join(s.baseDir, filepath.FromSlash(relative), snapshotFileName)
	if !fsutil.IsPathUnderRoot(s.baseDir, filePath) {
		return "", validationError("resource address escapes inventory base directory", nil)
	}
	return filePath, nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
