package graph

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/rackfish/rackfish/payload"
)

// ParameterSpec is one entry of a compiled action schema.
type ParameterSpec struct {
	Name            string
	Required        bool
	DataType        string
	AllowableValues []any
}

// ActionValidator checks invocation parameters against an ActionInfo
// document. The expected shape is
//
//	{"Parameters": [{"Name": "ResetType", "Required": true,
//	                 "DataType": "String", "AllowableValues": [...]}]}
type ActionValidator struct {
	parameters map[string]ParameterSpec
}

func CompileActionValidator(schema map[string]any) *ActionValidator {
	entries, ok := payload.AsSlice(schema["Parameters"])
	if !ok {
		entries, _ = payload.AsSlice(schema["parameters"])
	}

	parameters := map[string]ParameterSpec{}
	for _, entry := range entries {
		entryMap, ok := payload.AsMap(entry)
		if !ok {
			continue
		}
		name, _ := entryMap["Name"].(string)
		if name == "" {
			continue
		}
		required, _ := entryMap["Required"].(bool)
		dataType, _ := entryMap["DataType"].(string)
		allowable, _ := payload.AsSlice(entryMap["AllowableValues"])
		parameters[name] = ParameterSpec{
			Name:            name,
			Required:        required,
			DataType:        dataType,
			AllowableValues: allowable,
		}
	}

	return &ActionValidator{parameters: parameters}
}

func (v *ActionValidator) Parameters() []ParameterSpec {
	specs := make([]ParameterSpec, 0, len(v.parameters))
	for _, spec := range v.parameters {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Validate rejects missing required parameters, unknown parameters,
// structural type mismatches, and values outside AllowableValues. It is
// called before any network traffic, so a rejected invocation has no
// side effect.
func (v *ActionValidator) Validate(params map[string]any) error {
	var missing []string
	for name, spec := range v.parameters {
		if _, present := params[name]; spec.Required && !present {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return validationError(fmt.Sprintf("missing required action parameter(s): %v", missing), nil)
	}

	var unknown []string
	for name := range params {
		if _, expected := v.parameters[name]; !expected {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return validationError(fmt.Sprintf("unknown action parameter(s): %v", unknown), nil)
	}

	for _, name := range sortedParamNames(params) {
		spec := v.parameters[name]
		value := params[name]
		if spec.DataType != "" && !dataTypeMatches(value, spec.DataType) {
			return validationError(fmt.Sprintf(
				"parameter %q expects %s, got %T", name, spec.DataType, value), nil)
		}
		if len(spec.AllowableValues) > 0 && !containsValue(spec.AllowableValues, value) {
			return validationError(fmt.Sprintf(
				"parameter %q must be one of %v; got %v", name, spec.AllowableValues, value), nil)
		}
	}
	return nil
}

// dataTypeMatches checks the structural shape expected by the Redfish
// ActionInfo DataType vocabulary. Enumeration is shape-free; it is
// constrained through AllowableValues when the schema provides them.
func dataTypeMatches(value any, dataType string) bool {
	switch dataType {
	case "String", "Password":
		_, ok := value.(string)
		return ok
	case "Integer":
		_, ok := value.(int64)
		return ok
	case "Number":
		switch value.(type) {
		case int64, float64:
			return true
		}
		return false
	case "Boolean":
		_, ok := value.(bool)
		return ok
	case "Array":
		_, ok := value.([]any)
		return ok
	case "Object":
		_, ok := value.(map[string]any)
		return ok
	case "Enumeration":
		return true
	default:
		return true
	}
}

func containsValue(allowed []any, value any) bool {
	for _, candidate := range allowed {
		if reflect.DeepEqual(candidate, value) {
			return true
		}
	}
	return false
}

func sortedParamNames(params map[string]any) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
