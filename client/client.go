// Package client is the top-level entry point: it turns an endpoint
// configuration into an authenticated connection whose service root is
// the anchor of the lazily fetched resource graph.
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/rackfish/rackfish/config"
	"github.com/rackfish/rackfish/faults"
	"github.com/rackfish/rackfish/graph"
	httptransport "github.com/rackfish/rackfish/internal/providers/transport/http"
	"github.com/rackfish/rackfish/metric"
	"github.com/rackfish/rackfish/payload"
	"github.com/rackfish/rackfish/transport"
)

// Client owns one endpoint connection. All nodes reached through it
// share its transport and its action-schema cache.
type Client struct {
	transport transport.Client
	sessions  transport.SessionManager
	session   *graph.Session

	mu   sync.Mutex
	root *graph.Node
}

type Option func(*options)

type options struct {
	metrics *metric.Metrics
}

// WithMetrics instruments the underlying transport.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New builds a client for the endpoint without touching the network.
// Authentication and the service-root fetch happen on Connect.
func New(cfg config.Endpoint, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var gatewayOpts []httptransport.GatewayOption
	if o.metrics != nil {
		gatewayOpts = append(gatewayOpts, httptransport.WithMetrics(o.metrics))
	}

	gateway, err := httptransport.NewHTTPEndpointGateway(cfg, gatewayOpts...)
	if err != nil {
		return nil, err
	}
	return NewWithTransport(gateway), nil
}

// NewWithTransport wraps an already built transport. The transport may
// additionally implement transport.SessionManager; session login and
// logout are no-ops otherwise.
func NewWithTransport(client transport.Client) *Client {
	c := &Client{
		transport: client,
		session:   graph.NewSession(client),
	}
	if sessions, ok := client.(transport.SessionManager); ok {
		c.sessions = sessions
	}
	return c
}

// Connect authenticates against the endpoint and fetches its service
// root. Calling it again reuses the session and the resident root.
func (c *Client) Connect(ctx context.Context) (*graph.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root != nil {
		return c.root, nil
	}

	if c.sessions != nil {
		if err := c.sessions.Login(ctx); err != nil {
			return nil, err
		}
	}

	body, err := c.transport.Get(ctx, config.ServiceRootPath)
	if err != nil {
		return nil, err
	}
	rootBody, ok := payload.AsMap(body)
	if !ok {
		return nil, faults.NewTypedError(faults.StructuralError,
			fmt.Sprintf("service root %s is not a JSON object", config.ServiceRootPath), nil)
	}

	root, err := c.session.NodeFromPayload(ctx, config.ServiceRootPath, rootBody)
	if err != nil {
		return nil, err
	}
	c.root = root
	return root, nil
}

// Root returns the service root, connecting first when needed.
func (c *Client) Root(ctx context.Context) (*graph.Node, error) {
	return c.Connect(ctx)
}

// Resource returns an unfetched reference to an arbitrary address, for
// callers that already hold a resource path and do not want to walk the
// graph from the root.
func (c *Client) Resource(path string) *graph.Node {
	return c.session.NewStub(path)
}

// Close releases the server-side session when one is held. The client
// is reusable afterwards; the next Connect logs in again.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	c.root = nil
	c.mu.Unlock()

	if c.sessions == nil {
		return nil
	}
	return c.sessions.Logout(ctx)
}
