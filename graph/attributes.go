package graph

import (
	"regexp"
	"sort"

	"github.com/rackfish/rackfish/payload"
)

// Attribute values are primitives, nested *Node references, or slices
// mixing both. Go has no dynamic attribute injection, so the namespace
// is an explicit mapping with deterministic iteration order.
type attributeMap struct {
	values map[string]payload.Value
}

func newAttributeMap() *attributeMap {
	return &attributeMap{values: map[string]payload.Value{}}
}

func (m *attributeMap) set(name string, value payload.Value) {
	m.values[name] = value
}

func (m *attributeMap) get(name string) (payload.Value, bool) {
	value, ok := m.values[name]
	return value, ok
}

func (m *attributeMap) has(name string) bool {
	_, ok := m.values[name]
	return ok
}

func (m *attributeMap) names() []string {
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// isIdentifier reports whether a JSON key is a plain attribute name.
// Keys with annotation markers ("Boot@Redfish.AllowableValues") or other
// punctuation stay reachable only through raw-key lookup.
func isIdentifier(key string) bool {
	return identifierPattern.MatchString(key)
}
