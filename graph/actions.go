package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rackfish/rackfish/debugctx"
	"github.com/rackfish/rackfish/payload"
)

const actionInfoKey = "@Redfish.ActionInfo"

// Operation is a server-advertised action bound to a node. A nil
// validator means no parameter schema was retrievable; the action is
// then invoked unchecked.
type Operation struct {
	node      *Node
	name      string
	target    string
	validator *ActionValidator
}

func (op *Operation) Name() string {
	return op.name
}

// Checked reports whether invocations are validated against a parameter
// schema.
func (op *Operation) Checked() bool {
	return op.validator != nil
}

// Parameters describes the compiled schema in name order. Empty when
// the operation is unchecked.
func (op *Operation) Parameters() []ParameterSpec {
	if op.validator == nil {
		return nil
	}
	return op.validator.Parameters()
}

// Invoke validates params and POSTs them to the action target. No
// network call happens when validation rejects the parameters.
func (op *Operation) Invoke(ctx context.Context, params map[string]any) (payload.Value, error) {
	if op.target == "" {
		return nil, structuralError(fmt.Sprintf("action %q has no target", op.name))
	}

	if params == nil {
		params = map[string]any{}
	}
	normalized, err := payload.Normalize(params)
	if err != nil {
		return nil, err
	}
	body, _ := payload.AsMap(normalized)

	if op.validator != nil {
		if err := op.validator.Validate(body); err != nil {
			return nil, err
		}
	}

	return op.node.session.transport.Post(ctx, op.target, body)
}

// installActions walks the operation manifest, standard entries and
// vendor entries under Actions.Oem alike, and binds each as an
// invocable operation.
func (n *Node) installActions(ctx context.Context, actions map[string]any) {
	for key, value := range actions {
		info, ok := payload.AsMap(value)
		if !ok {
			continue
		}
		if key == oemKey {
			for _, vendorActions := range info {
				vendorMap, ok := payload.AsMap(vendorActions)
				if !ok {
					continue
				}
				for vendorKey, vendorValue := range vendorMap {
					if vendorInfo, ok := payload.AsMap(vendorValue); ok && strings.HasPrefix(vendorKey, "#") {
						n.bindAction(ctx, vendorKey, vendorInfo)
					}
				}
			}
			continue
		}
		if strings.HasPrefix(key, "#") {
			n.bindAction(ctx, key, info)
		}
	}
}

// bindAction registers one manifest entry. The bound name strips the
// hash and namespace qualifier: "#ComputerSystem.Reset" binds as
// "Reset". A retrievable ActionInfo schema compiles into a validator;
// fetch failures downgrade the operation to unchecked rather than
// failing hydration.
func (n *Node) bindAction(ctx context.Context, qualifiedName string, info map[string]any) {
	name := strings.TrimPrefix(qualifiedName, "#")
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		return
	}

	target, _ := info["target"].(string)

	var validator *ActionValidator
	if actionInfoURI, ok := info[actionInfoKey].(string); ok && actionInfoURI != "" {
		schema, err := n.session.schemas.getOrFetch(ctx, actionInfoURI, n.fetchActionSchema)
		if err != nil {
			debugctx.Printf(ctx, debugctx.GroupGraph,
				"action schema fetch failed action=%q address=%q error=%v", name, actionInfoURI, err)
		} else {
			validator = CompileActionValidator(schema)
		}
	}

	n.ops[name] = &Operation{
		node:      n,
		name:      name,
		target:    target,
		validator: validator,
	}
}

func (n *Node) fetchActionSchema(ctx context.Context, address string) (map[string]any, error) {
	body, err := n.session.transport.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	schema, ok := payload.AsMap(body)
	if !ok {
		return nil, transportError(fmt.Sprintf("action schema %s is not a JSON object", address), nil)
	}
	return schema, nil
}

// Operations lists the bound action names in deterministic order.
func (n *Node) Operations(ctx context.Context) ([]string, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(n.ops))
	for name := range n.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (n *Node) HasOperation(ctx context.Context, name string) (bool, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return false, err
	}
	_, ok := n.ops[name]
	return ok, nil
}

func (n *Node) Operation(ctx context.Context, name string) (*Operation, error) {
	if err := n.ensureFetched(ctx); err != nil {
		return nil, err
	}
	op, ok := n.ops[name]
	if !ok {
		return nil, notFoundError(fmt.Sprintf("resource %s has no action %q", n.describe(), name))
	}
	return op, nil
}

// Invoke is shorthand for Operation(name).Invoke(params).
func (n *Node) Invoke(ctx context.Context, name string, params map[string]any) (payload.Value, error) {
	op, err := n.Operation(ctx, name)
	if err != nil {
		return nil, err
	}
	return op.Invoke(ctx, params)
}
