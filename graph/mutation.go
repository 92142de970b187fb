package graph

import (
	"context"
	"fmt"

	"github.com/rackfish/rackfish/payload"
)

// Set assigns a primitive attribute through a single-property PATCH.
// The resident entity tag rides along as the update precondition when
// present. On success the local state is updated optimistically, without
// a re-fetch. Assigning a structured property is rejected locally; use
// Patch for those.
func (n *Node) Set(ctx context.Context, name string, value payload.Value) error {
	if err := n.ensureFetched(ctx); err != nil {
		return err
	}
	if n.path == "" {
		return structuralError("attribute assignment requires a resource address")
	}

	existing, ok := n.raw[name]
	if !ok {
		return structuralError(fmt.Sprintf(
			"resource %s has no attribute %q to assign", n.describe(), name))
	}
	if !payload.IsPrimitive(existing) {
		return structuralError(fmt.Sprintf(
			"attribute %q is not a primitive; use Patch for structured updates", name))
	}

	normalized, err := payload.Normalize(value)
	if err != nil {
		return err
	}

	if err := n.session.transport.Patch(ctx, n.path, map[string]any{name: normalized}, n.etag); err != nil {
		return err
	}

	n.raw[name] = normalized
	n.attrs.set(name, normalized)
	return nil
}

// Patch applies a bulk update and then refreshes the whole node, since
// structured updates may change shape, surfaced entries, or bound
// actions. A stale-precondition rejection is surfaced as-is; callers
// resolve it with an explicit Refresh and retry.
func (n *Node) Patch(ctx context.Context, updates map[string]any) error {
	if n.path == "" {
		return structuralError("patch requires a resource address")
	}
	if err := n.ensureFetched(ctx); err != nil {
		return err
	}

	normalized, err := payload.Normalize(updates)
	if err != nil {
		return err
	}
	body, ok := payload.AsMap(normalized)
	if !ok {
		return validationError("patch updates must be an object", nil)
	}

	if err := n.session.transport.Patch(ctx, n.path, body, n.etag); err != nil {
		return err
	}

	return n.Refresh(ctx)
}
