package graph

import (
	"context"
	"reflect"
	"testing"

	"github.com/rackfish/rackfish/faults"
)

func TestStubFetchesLazily(t *testing.T) {
	t.Parallel()

	fake := newFakeTransport(map[string]map[string]any{
		"/redfish/v1/Systems/1": {
			"@odata.id": "/redfish/v1/Systems/1",
			"Id":        "1",
			"Name":      "System One",
		},
	})
	node := NewSession(fake).NewStub("/redfish/v1/Systems/1")

	if len(fake.gets) != 0 {
		t.Fatalf("stub construction must not touch the transport, saw %v", fake.gets)
	}
	if node.Fetched() {
		t.Fatalf("fresh stub must not report fetched")
	}

	name, err := node.Get(context.Background(), "Name")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if name != "System One" {
		t.Fatalf("unexpected Name: %v", name)
	}
	if len(fake.gets) != 1 {
		t.Fatalf("first access must issue exactly one GET, saw %v", fake.gets)
	}

	// Subsequent reads stay resident.
	if _, err := node.Get(context.Background(), "Id"); err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if len(fake.gets) != 1 {
		t.Fatalf("resident reads must not re-fetch, saw %v", fake.gets)
	}
}

func buildNestedBody(depth int) map[string]any {
	if depth == 0 {
		return map[string]any{"@odata.id": "/redfish/v1/leaf", "Id": "leaf"}
	}
	return map[string]any{
		"@odata.id": "/redfish/v1/level" + string(rune('0'+depth%10)),
		"Id":        "level",
		"Child":     buildNestedBody(depth - 1),
		"Siblings": []any{
			map[string]any{"@odata.id": "/redfish/v1/sibling1"},
			map[string]any{"@odata.id": "/redfish/v1/sibling2"},
		},
	}
}

func TestHydrationIsDepthIndependent(t *testing.T) {
	t.Parallel()

	body := buildNestedBody(50)
	fake := newFakeTransport(map[string]map[string]any{"/redfish/v1/deep": body})
	node := NewSession(fake).NewStub("/redfish/v1/deep")

	child, err := node.Get(context.Background(), "Child")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(fake.gets) != 1 {
		t.Fatalf("hydrating a nested payload must cost one GET, saw %d", len(fake.gets))
	}

	// The addressed child is a stub, whatever else its body carried.
	childNode, ok := child.(*Node)
	if !ok {
		t.Fatalf("expected Child to be a node, got %T", child)
	}
	if childNode.Fetched() {
		t.Fatalf("embedded addressed objects must defer to a real fetch")
	}
	if childNode.Path() == "" {
		t.Fatalf("child stub must carry its address")
	}
}

func TestEmbeddedValueObjectHydratesInline(t *testing.T) {
	t.Parallel()

	fake := newFakeTransport(map[string]map[string]any{
		"/redfish/v1/Systems/1": {
			"@odata.id": "/redfish/v1/Systems/1",
			"Status":    map[string]any{"State": "Enabled", "Health": "OK"},
		},
	})
	node := NewSession(fake).NewStub("/redfish/v1/Systems/1")

	status, err := node.Get(context.Background(), "Status")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	statusNode, ok := status.(*Node)
	if !ok {
		t.Fatalf("expected embedded node, got %T", status)
	}
	if !statusNode.Fetched() {
		t.Fatalf("address-less objects hydrate inline")
	}
	if statusNode.Path() != "" {
		t.Fatalf("value objects have no address, got %q", statusNode.Path())
	}

	health, err := statusNode.Get(context.Background(), "Health")
	if err != nil || health != "OK" {
		t.Fatalf("unexpected Health: %v (%v)", health, err)
	}
	if len(fake.gets) != 1 {
		t.Fatalf("embedded reads must not fetch, saw %v", fake.gets)
	}
}

func TestRehydrationIsIdempotent(t *testing.T) {
	t.Parallel()

	body := map[string]any{
		"@odata.id": "/redfish/v1/Systems/1",
		"Name":      "x",
		"Oem":       map[string]any{"V": map[string]any{"Boot": "UEFI"}},
		"Links":     map[string]any{"Chassis": map[string]any{"@odata.id": "/redfish/v1/Chassis/1"}},
	}
	fake := newFakeTransport(map[string]map[string]any{"/redfish/v1/Systems/1": body})
	node := NewSession(fake).NewStub("/redfish/v1/Systems/1")
	ctx := context.Background()

	first, err := node.AttributeNames(ctx)
	if err != nil {
		t.Fatalf("hydrate failed: %v", err)
	}
	if err := node.Refresh(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	second, err := node.AttributeNames(ctx)
	if err != nil {
		t.Fatalf("post-refresh names failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-hydration changed the namespace: %v vs %v", first, second)
	}
}

func TestRawKeyLookupForNonIdentifierKeys(t *testing.T) {
	t.Parallel()

	fake := newFakeTransport(map[string]map[string]any{
		"/redfish/v1/Systems/1": {
			"@odata.id": "/redfish/v1/Systems/1",
			"BootSourceOverrideTarget@Redfish.AllowableValues": []any{"None", "Pxe"},
		},
	})
	node := NewSession(fake).NewStub("/redfish/v1/Systems/1")
	ctx := context.Background()

	value, err := node.Get(ctx, "BootSourceOverrideTarget@Redfish.AllowableValues")
	if err != nil {
		t.Fatalf("raw-key lookup failed: %v", err)
	}
	if !reflect.DeepEqual(value, []any{"None", "Pxe"}) {
		t.Fatalf("unexpected raw value: %v", value)
	}

	allowed, err := node.GetAllowableValues(ctx, "BootSourceOverrideTarget")
	if err != nil {
		t.Fatalf("allowable values failed: %v", err)
	}
	if !reflect.DeepEqual(allowed, []any{"None", "Pxe"}) {
		t.Fatalf("unexpected allowable values: %v", allowed)
	}
	if len(fake.gets) != 1 {
		t.Fatalf("allowable values must read resident state only, saw %v", fake.gets)
	}
}

func TestMissingAttributeIsNotFound(t *testing.T) {
	t.Parallel()

	fake := newFakeTransport(map[string]map[string]any{
		"/redfish/v1/Systems/1": {"@odata.id": "/redfish/v1/Systems/1", "Id": "1"},
	})
	node := NewSession(fake).NewStub("/redfish/v1/Systems/1")

	_, err := node.Get(context.Background(), "NoSuchThing")
	if !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestToDictReturnsDeepCopy(t *testing.T) {
	t.Parallel()

	fake := newFakeTransport(map[string]map[string]any{
		"/redfish/v1/Systems/1": {
			"@odata.id": "/redfish/v1/Systems/1",
			"Boot":      map[string]any{"Mode": "UEFI"},
		},
	})
	node := NewSession(fake).NewStub("/redfish/v1/Systems/1")
	ctx := context.Background()

	dict, err := node.ToDict(ctx)
	if err != nil {
		t.Fatalf("to-dict failed: %v", err)
	}
	dict["Boot"].(map[string]any)["Mode"] = "Legacy"

	fresh, err := node.ToDict(ctx)
	if err != nil {
		t.Fatalf("second to-dict failed: %v", err)
	}
	if fresh["Boot"].(map[string]any)["Mode"] != "UEFI" {
		t.Fatalf("to-dict must not share state with the node")
	}
}

func TestFetchFailurePropagates(t *testing.T) {
	t.Parallel()

	fake := newFakeTransport(nil)
	node := NewSession(fake).NewStub("/redfish/v1/Missing")

	_, err := node.Get(context.Background(), "Name")
	if !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected transport failure to surface, got %v", err)
	}
}
