package graph

import (
	"context"
	"fmt"

	"github.com/rackfish/rackfish/payload"
)

// Length returns the size of the Members list. It reads only the
// resident body; members themselves are not fetched.
func (n *Node) Length(ctx context.Context) (int, error) {
	members, err := n.memberList(ctx)
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// Members returns one stub per member address, in payload order. Every
// call allocates fresh stubs from the resident Members list, so
// iteration is restartable without network traffic and member graphs
// stay trees rather than shared graphs.
func (n *Node) Members(ctx context.Context) ([]*Node, error) {
	members, err := n.memberList(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(members))
	for _, member := range members {
		node, err := n.memberNode(ctx, member)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Index returns the i-th member as a stub, hydrated on first touch like
// any other.
func (n *Node) Index(ctx context.Context, idx int) (*Node, error) {
	members, err := n.memberList(ctx)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(members) {
		return nil, validationError(fmt.Sprintf(
			"collection %s index %d out of range (%d members)", n.describe(), idx, len(members)), nil)
	}
	return n.memberNode(ctx, members[idx])
}

// Create POSTs body to the collection. When the response carries the
// new member's address the returned node is hydrated directly from that
// response, with no extra round trip. Otherwise the member's location
// is unknown, so the collection itself is re-fetched and returned for
// the caller to locate the new member by iteration.
func (n *Node) Create(ctx context.Context, body map[string]any) (*Node, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return nil, err
	}
	if !n.isCollection {
		return nil, structuralError(fmt.Sprintf("resource %s is not a collection", n.describe()))
	}
	if n.path == "" {
		return nil, structuralError("create requires a collection address")
	}

	response, err := n.session.transport.Post(ctx, n.path, body)
	if err != nil {
		return nil, err
	}

	if responseMap, ok := payload.AsMap(response); ok {
		if address, ok := responseMap[addressKey].(string); ok && address != "" {
			return n.session.NodeFromPayload(ctx, address, responseMap)
		}
	}

	if err := n.Refresh(ctx); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) memberList(ctx context.Context) ([]any, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return nil, err
	}
	if !n.isCollection {
		return nil, structuralError(fmt.Sprintf("resource %s is not a collection", n.describe()))
	}
	members, _ := payload.AsSlice(n.raw[membersKey])
	return members, nil
}

func (n *Node) memberNode(ctx context.Context, member any) (*Node, error) {
	memberMap, ok := payload.AsMap(member)
	if !ok {
		return nil, structuralError(fmt.Sprintf("collection %s member is not an object", n.describe()))
	}
	if address, ok := memberMap[addressKey].(string); ok && address != "" {
		return n.session.NewStub(address), nil
	}
	// Rare but legal: a collection embedding full member bodies.
	return n.session.NodeFromPayload(ctx, "", memberMap)
}
