package graph

import (
	"context"

	"github.com/rackfish/rackfish/payload"
)

// surfaceOEMContent lifts vendor properties out of the Oem container
// into the top-level namespace, one level of indirection removed. A
// property whose name is already taken stays only under Oem; standard
// attributes always win. Vendor action keys ("#Vendor.Action") fail the
// identifier check and are left to the action binder.
func (n *Node) surfaceOEMContent(ctx context.Context, oem map[string]any) {
	for _, vendorData := range oem {
		vendorMap, ok := payload.AsMap(vendorData)
		if !ok {
			continue
		}
		for key, value := range vendorMap {
			if !isIdentifier(key) || n.attrs.has(key) {
				continue
			}
			n.attrs.set(key, n.convert(ctx, value))
		}
	}
}

// surfaceLinksContent lifts named relations out of the Links container,
// converting each to stubs exactly as hydration would. Collisions with
// existing attributes are skipped silently.
func (n *Node) surfaceLinksContent(ctx context.Context, links map[string]any) {
	for key, value := range links {
		if metaKeys[key] || !isIdentifier(key) || n.attrs.has(key) {
			continue
		}
		n.attrs.set(key, n.convert(ctx, value))
	}
}
