package payload

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/rackfish/rackfish/faults"
)

func TestNormalizeNumbers(t *testing.T) {
	t.Parallel()

	got, err := Normalize(map[string]any{
		"Count":   json.Number("42"),
		"Reading": json.Number("21.5"),
		"Total":   uint32(7),
	})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	want := map[string]any{
		"Count":   int64(42),
		"Reading": 21.5,
		"Total":   int64(7),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("normalized payload mismatch: got %#v want %#v", got, want)
	}
}

func TestNormalizeRejectsNonFiniteFloat(t *testing.T) {
	t.Parallel()

	_, err := Normalize([]any{math.Inf(1)})
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNormalizeRejectsUnsupportedType(t *testing.T) {
	t.Parallel()

	_, err := Normalize(map[string]any{"Ch": make(chan int)})
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	original := map[string]any{
		"Status":  map[string]any{"Health": "OK"},
		"Members": []any{map[string]any{"@odata.id": "/redfish/v1/Systems/1"}},
	}
	cloned, ok := AsMap(Clone(original))
	if !ok {
		t.Fatalf("clone changed the top-level shape")
	}

	cloned["Status"].(map[string]any)["Health"] = "Critical"
	if original["Status"].(map[string]any)["Health"] != "OK" {
		t.Fatalf("clone shares nested maps with the original")
	}
}

func TestIsPrimitive(t *testing.T) {
	t.Parallel()

	for _, value := range []any{nil, true, "x", int64(1), 1.5} {
		if !IsPrimitive(value) {
			t.Fatalf("expected %#v to be primitive", value)
		}
	}
	for _, value := range []any{map[string]any{}, []any{}} {
		if IsPrimitive(value) {
			t.Fatalf("expected %#v to be structural", value)
		}
	}
}
