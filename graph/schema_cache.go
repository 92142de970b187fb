package graph

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rackfish/rackfish/debugctx"
)

const schemaCacheSize = 256

// schemaCache holds fetched ActionInfo documents keyed by their address.
// Several nodes commonly advertise the same action, so each schema is
// fetched at most once per session. The mutex also serializes the fetch
// itself; concurrent callers for the same address wait rather than race.
type schemaCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, map[string]any]
}

func newSchemaCache(size int) *schemaCache {
	entries, err := lru.New[string, map[string]any](size)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &schemaCache{entries: entries}
}

func (c *schemaCache) getOrFetch(
	ctx context.Context,
	address string,
	fetch func(ctx context.Context, address string) (map[string]any, error),
) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.entries.Get(address); ok {
		debugctx.Printf(ctx, debugctx.GroupGraph, "action schema cache hit address=%q", address)
		return cached, nil
	}

	schema, err := fetch(ctx, address)
	if err != nil {
		return nil, err
	}

	c.entries.Add(address, schema)
	return schema, nil
}
