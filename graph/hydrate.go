package graph

import (
	"context"

	"github.com/rackfish/rackfish/payload"
)

const (
	addressKey = "@odata.id"
	typeKey    = "@odata.type"
	contextKey = "@odata.context"
	etagKey    = "@odata.etag"

	membersKey = "Members"
	oemKey     = "Oem"
	linksKey   = "Links"
	actionsKey = "Actions"

	allowableValuesMarker = "@Redfish.AllowableValues"
)

// Keys that describe the payload rather than the resource; they stay in
// raw but never become attributes.
var metaKeys = map[string]bool{
	addressKey: true,
	typeKey:    true,
	contextKey: true,
	etagKey:    true,
}

// hydrate rebuilds the node's namespace from body. It is idempotent:
// every pass starts from empty attribute and operation maps, so
// re-hydration after a refresh never duplicates surfaced or bound
// entries. Work is bounded to the immediate children of body: nested
// addressed objects become stubs, never inline fetches.
func (n *Node) hydrate(ctx context.Context, body map[string]any) error {
	if n.path == "" {
		if address, ok := body[addressKey].(string); ok {
			n.path = address
		}
	}

	// Re-derived on every pass. A refresh that drops the entity tag must
	// not leave the old token to ride along as a stale precondition.
	n.etag, _ = body[etagKey].(string)

	_, hasMembers := payload.AsSlice(body[membersKey])
	n.isCollection = hasMembers

	n.attrs = newAttributeMap()
	n.ops = map[string]*Operation{}

	for key, value := range body {
		if metaKeys[key] || !isIdentifier(key) {
			continue
		}
		n.attrs.set(key, n.convert(ctx, value))
	}

	if oem, ok := payload.AsMap(body[oemKey]); ok {
		n.surfaceOEMContent(ctx, oem)
	}
	if links, ok := payload.AsMap(body[linksKey]); ok {
		n.surfaceLinksContent(ctx, links)
	}
	if actions, ok := payload.AsMap(body[actionsKey]); ok {
		n.installActions(ctx, actions)
	}

	n.fetched = true
	return nil
}

// convert maps a JSON value into the attribute domain:
//   - an object carrying an address becomes a link stub, whatever else
//     it carries; embedded resource bodies are discarded in favor of a
//     deferred real fetch, which keeps hydration depth-independent;
//   - an address-less object is a genuine value object (Status, Boot)
//     and hydrates inline as a path-less node;
//   - sequences convert element-wise;
//   - primitives pass through.
func (n *Node) convert(ctx context.Context, value payload.Value) payload.Value {
	switch typed := value.(type) {
	case map[string]any:
		if address, ok := typed[addressKey].(string); ok && address != "" {
			return n.session.NewStub(address)
		}
		embedded := &Node{
			session: n.session,
			raw:     typed,
		}
		_ = embedded.hydrate(ctx, typed)
		return embedded
	case []any:
		converted := make([]any, len(typed))
		for idx, element := range typed {
			converted[idx] = n.convert(ctx, element)
		}
		return converted
	default:
		return typed
	}
}
