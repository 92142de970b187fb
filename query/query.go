// Package query evaluates jq expressions against resource payloads.
// The CLI uses it to project and filter fetched resource state.
package query

import (
	"context"
	"strings"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/rackfish/rackfish/faults"
	"github.com/rackfish/rackfish/payload"
)

var codeCache sync.Map

// Apply runs expression against value. An empty expression returns the
// value unchanged. A single result is returned bare; multiple results
// come back as a list.
func Apply(ctx context.Context, value payload.Value, expression string) (payload.Value, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return value, nil
	}

	code, err := cachedCode(trimmed)
	if err != nil {
		return nil, faults.NewTypedError(faults.ValidationError, "invalid jq expression", err)
	}

	runCtx := ctx
	if runCtx == nil {
		runCtx = context.Background()
	}
	iterator := code.RunWithContext(runCtx, toJQValue(value))
	results := make([]any, 0, 1)
	for {
		result, ok := iterator.Next()
		if !ok {
			break
		}
		if resultErr, isErr := result.(error); isErr {
			return nil, faults.NewTypedError(faults.ValidationError, "failed to evaluate jq expression", resultErr)
		}
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, nil
	}
	if len(results) == 1 {
		return payload.Normalize(results[0])
	}
	return payload.Normalize(results)
}

// toJQValue rewrites normalized payloads into the value domain gojq
// accepts, which uses int instead of int64.
func toJQValue(value payload.Value) any {
	switch typed := value.(type) {
	case int64:
		return int(typed)
	case []any:
		converted := make([]any, len(typed))
		for i, item := range typed {
			converted[i] = toJQValue(item)
		}
		return converted
	case map[string]any:
		converted := make(map[string]any, len(typed))
		for key, item := range typed {
			converted[key] = toJQValue(item)
		}
		return converted
	default:
		return value
	}
}

func cachedCode(expression string) (*gojq.Code, error) {
	if cached, ok := codeCache.Load(expression); ok {
		if typed, ok := cached.(*gojq.Code); ok && typed != nil {
			return typed, nil
		}
	}

	parsed, err := gojq.Parse(expression)
	if err != nil {
		return nil, err
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, err
	}

	actual, _ := codeCache.LoadOrStore(expression, code)
	typed, _ := actual.(*gojq.Code)
	if typed == nil {
		return code, nil
	}
	return typed, nil
}
