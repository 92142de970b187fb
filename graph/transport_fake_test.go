package graph

import (
	"context"
	"fmt"

	"github.com/rackfish/rackfish/faults"
	"github.com/rackfish/rackfish/payload"
)

type recordedPatch struct {
	path         string
	body         map[string]any
	precondition string
}

type recordedPost struct {
	path string
	body payload.Value
}

// fakeTransport serves canned bodies and records every call, so tests
// can assert both behavior and exact network cost.
type fakeTransport struct {
	data map[string]map[string]any

	postResponse payload.Value
	patchErr     error

	gets    []string
	posts   []recordedPost
	patches []recordedPatch
	deletes []string
}

func newFakeTransport(data map[string]map[string]any) *fakeTransport {
	if data == nil {
		data = map[string]map[string]any{}
	}
	return &fakeTransport{data: data}
}

func (f *fakeTransport) Get(_ context.Context, path string) (payload.Value, error) {
	f.gets = append(f.gets, path)
	body, ok := f.data[path]
	if !ok {
		return nil, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("GET %s -> 404", path), nil)
	}
	return payload.Normalize(payload.Clone(body))
}

func (f *fakeTransport) Post(_ context.Context, path string, body payload.Value) (payload.Value, error) {
	f.posts = append(f.posts, recordedPost{path: path, body: body})
	if f.postResponse == nil {
		return nil, nil
	}
	return payload.Normalize(payload.Clone(f.postResponse))
}

func (f *fakeTransport) Patch(_ context.Context, path string, body map[string]any, precondition string) error {
	f.patches = append(f.patches, recordedPatch{path: path, body: body, precondition: precondition})
	return f.patchErr
}

func (f *fakeTransport) Delete(_ context.Context, path string) error {
	f.deletes = append(f.deletes, path)
	return nil
}
