// Package transport defines the boundary the resource graph talks
// through. Every call is a single, unretried round trip; failures come
// back as faults.TypedError values carrying the remote status and body.
package transport

import (
	"context"

	"github.com/rackfish/rackfish/payload"
)

type Client interface {
	// Get fetches a resource body. A non-2xx status or a non-JSON body
	// is a transport-category error.
	Get(ctx context.Context, path string) (payload.Value, error)

	// Post sends body to path and returns the decoded response body,
	// or nil when the response carries none.
	Post(ctx context.Context, path string, body payload.Value) (payload.Value, error)

	// Patch sends a partial update. A non-empty precondition is attached
	// as an If-Match header; a 412 rejection surfaces as a
	// stale-state error.
	Patch(ctx context.Context, path string, body map[string]any, precondition string) error

	Delete(ctx context.Context, path string) error
}

// SessionManager is implemented by transports that hold a server-side
// session (Redfish session auth).
type SessionManager interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
}
