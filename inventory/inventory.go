// Package inventory persists point-in-time snapshots of remote
// resource state, keyed by resource address. Snapshots back audits and
// offline diffing of hardware configuration.
package inventory

import (
	"context"
	"path"
	"strings"

	"github.com/rackfish/rackfish/faults"
	"github.com/rackfish/rackfish/payload"
)

// Store is one snapshot backend. Addresses follow the wire form, e.g.
// /redfish/v1/Systems/1.
type Store interface {
	Save(ctx context.Context, address string, value payload.Value) error
	Get(ctx context.Context, address string) (payload.Value, error)
	Delete(ctx context.Context, address string) error
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, address string) (bool, error)
}

// Lifecycle prepares and checks the backing storage.
type Lifecycle interface {
	Init(ctx context.Context) error
	Check(ctx context.Context) error
}

// Committer is implemented by backends that record snapshot history.
// Commit reports whether anything changed since the last commit.
type Committer interface {
	Commit(ctx context.Context, message string) (bool, error)
}

// NormalizeAddress validates and canonicalizes a resource address for
// use as a snapshot key.
func NormalizeAddress(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", faults.NewTypedError(faults.ValidationError, "resource address must not be empty", nil)
	}

	normalizedInput := strings.ReplaceAll(value, "\\", "/")
	if !strings.HasPrefix(normalizedInput, "/") {
		return "", faults.NewTypedError(faults.ValidationError, "resource address must be absolute", nil)
	}

	for _, segment := range strings.Split(normalizedInput, "/") {
		if segment == ".." {
			return "", faults.NewTypedError(faults.ValidationError, "resource address must not contain traversal segments", nil)
		}
	}

	cleaned := path.Clean(normalizedInput)
	if !strings.HasPrefix(cleaned, "/") {
		return "", faults.NewTypedError(faults.ValidationError, "resource address must be absolute", nil)
	}
	if cleaned == "/" {
		return "", faults.NewTypedError(faults.ValidationError, "resource address must target a resource, not root", nil)
	}

	return strings.TrimSuffix(cleaned, "/"), nil
}
