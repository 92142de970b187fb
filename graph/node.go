package graph

import (
	"context"
	"fmt"

	"github.com/rackfish/rackfish/debugctx"
	"github.com/rackfish/rackfish/payload"
)

// Node is a single resource in the graph. A stub carries only its
// address; the first read fetches and hydrates it in place. A node built
// from an embedded, address-less object has an empty path and can never
// be refreshed independently.
type Node struct {
	session *Session

	path         string
	raw          map[string]any
	fetched      bool
	isCollection bool
	etag         string

	attrs *attributeMap
	ops   map[string]*Operation
}

// Path returns the node's canonical address without triggering a fetch.
// Empty for embedded value objects.
func (n *Node) Path() string {
	return n.path
}

// Fetched reports whether the node has been hydrated. It never triggers
// network traffic.
func (n *Node) Fetched() bool {
	return n.fetched
}

func (n *Node) ensureFetched(ctx context.Context) error {
	if n.fetched {
		return nil
	}
	if n.path == "" {
		return structuralError("node has no address and no resident body")
	}

	body, err := n.session.transport.Get(ctx, n.path)
	if err != nil {
		return err
	}
	raw, ok := payload.AsMap(body)
	if !ok {
		return transportError(fmt.Sprintf("resource %s body is not a JSON object", n.path), nil)
	}

	n.raw = raw
	debugctx.Printf(ctx, debugctx.GroupGraph, "hydrating path=%q", n.path)
	return n.hydrate(ctx, raw)
}

// Get resolves an attribute, hydrating the node first when necessary.
// Identifier-safe payload keys resolve through the attribute namespace;
// any other key falls back to raw lookup, so annotated keys such as
// "Boot@Redfish.AllowableValues" stay reachable.
func (n *Node) Get(ctx context.Context, name string) (payload.Value, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return nil, err
	}
	if value, ok := n.attrs.get(name); ok {
		return value, nil
	}
	if value, ok := n.raw[name]; ok {
		return value, nil
	}
	return nil, notFoundError(fmt.Sprintf("resource %s has no attribute %q", n.describe(), name))
}

func (n *Node) HasAttribute(ctx context.Context, name string) (bool, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return false, err
	}
	if n.attrs.has(name) {
		return true, nil
	}
	_, ok := n.raw[name]
	return ok, nil
}

// AttributeNames lists the hydrated namespace in deterministic order,
// surfaced OEM and Links properties included.
func (n *Node) AttributeNames(ctx context.Context) ([]string, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return nil, err
	}
	return n.attrs.names(), nil
}

func (n *Node) IsCollection(ctx context.Context) (bool, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return false, err
	}
	return n.isCollection, nil
}

// ConcurrencyToken returns the entity tag captured at hydration, or the
// empty string when the resource does not advertise one.
func (n *Node) ConcurrencyToken(ctx context.Context) (string, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return "", err
	}
	return n.etag, nil
}

// ToDict returns a deep copy of the last fetched body.
func (n *Node) ToDict(ctx context.Context) (map[string]any, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return nil, err
	}
	cloned, _ := payload.AsMap(payload.Clone(n.raw))
	return cloned, nil
}

// GetAllowableValues reads the "<name>@Redfish.AllowableValues" hint for
// a property from the resident body. It never issues a network call
// beyond the hydration any read performs.
func (n *Node) GetAllowableValues(ctx context.Context, name string) ([]any, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return nil, err
	}
	values, _ := payload.AsSlice(n.raw[name+allowableValuesMarker])
	return values, nil
}

// Refresh re-fetches the body and rebuilds the attribute namespace,
// surfaced entries, and bound operations from scratch.
func (n *Node) Refresh(ctx context.Context) error {
	if n.path == "" {
		return structuralError("refresh requires a resource address")
	}

	body, err := n.session.transport.Get(ctx, n.path)
	if err != nil {
		return err
	}
	raw, ok := payload.AsMap(body)
	if !ok {
		return transportError(fmt.Sprintf("resource %s body is not a JSON object", n.path), nil)
	}

	n.raw = raw
	return n.hydrate(ctx, raw)
}

// Delete removes the remote resource. The local node keeps its last
// hydrated state; callers refresh owning collections to observe the
// removal.
func (n *Node) Delete(ctx context.Context) error {
	if n.path == "" {
		return structuralError("delete requires a resource address")
	}
	return n.session.transport.Delete(ctx, n.path)
}

// Identity prefers the resource's Id, then Name, then its address.
func (n *Node) Identity(ctx context.Context) (string, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return "", err
	}
	if id, ok := n.raw["Id"].(string); ok && id != "" {
		return id, nil
	}
	if name, ok := n.raw["Name"].(string); ok && name != "" {
		return name, nil
	}
	if n.path != "" {
		return n.path, nil
	}
	return "<unknown>", nil
}

func (n *Node) describe() string {
	if n.path != "" {
		return n.path
	}
	return "<embedded>"
}

func (n *Node) String() string {
	resourceType, _ := n.raw[typeKey].(string)
	if resourceType == "" {
		resourceType = "Resource"
	}
	return fmt.Sprintf("<%s %s>", resourceType, n.describe())
}
