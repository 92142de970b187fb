// Package graph turns remote JSON resources into a lazily fetched,
// navigable node graph. Nodes start as link stubs carrying only an
// address; the first attribute access fetches the body, hydrates the
// attribute namespace, surfaces OEM and Links sub-trees, and binds the
// advertised actions as invocable operations.
package graph

import (
	"context"

	"github.com/rackfish/rackfish/transport"
)

// Session ties a set of nodes to one transport and owns the shared
// action-schema cache. Its lifetime matches the owning client; a new
// connection starts with an empty cache.
type Session struct {
	transport transport.Client
	schemas   *schemaCache
}

func NewSession(client transport.Client) *Session {
	return &Session{
		transport: client,
		schemas:   newSchemaCache(schemaCacheSize),
	}
}

// NewStub creates an unfetched reference to the resource at path. No
// network traffic happens until the node is first read.
func (s *Session) NewStub(path string) *Node {
	return &Node{
		session: s,
		path:    path,
		raw:     map[string]any{},
	}
}

// NodeFromPayload builds a hydrated node directly from an already
// fetched body, e.g. the service root returned by Connect or the
// response of a collection create.
func (s *Session) NodeFromPayload(ctx context.Context, path string, body map[string]any) (*Node, error) {
	node := &Node{
		session: s,
		path:    path,
		raw:     body,
	}
	if err := node.hydrate(ctx, body); err != nil {
		return nil, err
	}
	return node, nil
}
