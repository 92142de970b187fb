package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rackfish/rackfish/config"
	"github.com/rackfish/rackfish/internal/providers/shared/tlsconfig"
	"github.com/rackfish/rackfish/metric"
	"github.com/rackfish/rackfish/payload"
	"github.com/rackfish/rackfish/transport"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMediaType   = "application/json"
)

var _ transport.Client = (*HTTPEndpointGateway)(nil)
var _ transport.SessionManager = (*HTTPEndpointGateway)(nil)

// HTTPEndpointGateway speaks plain HTTPS to a Redfish-style endpoint.
// It owns authentication (basic or session token), TLS policy, and the
// classification of remote failures into fault categories.
type HTTPEndpointGateway struct {
	baseURL        *url.URL
	defaultHeaders map[string]string
	auth           authConfig
	client         *http.Client
	metrics        *metric.Metrics
	tlsDebug       tlsDebugInfo

	sessionMu    sync.Mutex
	sessionToken string
	sessionURI   string
}

type GatewayOption func(*HTTPEndpointGateway)

func WithMetrics(metrics *metric.Metrics) GatewayOption {
	return func(g *HTTPEndpointGateway) {
		if g == nil {
			return
		}
		g.metrics = metrics
	}
}

func NewHTTPEndpointGateway(cfg config.Endpoint, opts ...GatewayOption) (*HTTPEndpointGateway, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	auth, err := buildAuthConfig(cfg.Auth)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := tlsconfig.BuildTLSConfig(cfg.TLS, "endpoint")
	if err != nil {
		return nil, err
	}

	httpTransport := http.DefaultTransport.(*http.Transport).Clone()
	httpTransport.TLSClientConfig = tlsConfig

	gateway := &HTTPEndpointGateway{
		baseURL:        baseURL,
		defaultHeaders: cloneStringMap(cfg.DefaultHeaders),
		auth:           auth,
		client: &http.Client{
			Timeout:   defaultHTTPTimeout,
			Transport: httpTransport,
		},
		tlsDebug: newTLSDebugInfo(cfg.TLS),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(gateway)
	}
	return gateway, nil
}

func (g *HTTPEndpointGateway) Get(ctx context.Context, path string) (payload.Value, error) {
	body, _, status, err := g.execute(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classifyStatusError(status, statusMessage(http.MethodGet, path, status, body))
	}
	return decodeJSONResponse(path, body)
}

func (g *HTTPEndpointGateway) Post(ctx context.Context, path string, body payload.Value) (payload.Value, error) {
	requestBody := body
	if requestBody == nil {
		requestBody = map[string]any{}
	}

	responseBody, _, status, err := g.execute(ctx, http.MethodPost, path, requestBody, nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
		if len(responseBody) == 0 {
			return nil, nil
		}
		return decodeJSONResponse(path, responseBody)
	case http.StatusAccepted, http.StatusNoContent:
		return nil, nil
	default:
		return nil, classifyStatusError(status, statusMessage(http.MethodPost, path, status, responseBody))
	}
}

func (g *HTTPEndpointGateway) Patch(ctx context.Context, path string, body map[string]any, precondition string) error {
	var headers map[string]string
	if strings.TrimSpace(precondition) != "" {
		headers = map[string]string{"If-Match": precondition}
	}

	responseBody, _, status, err := g.execute(ctx, http.MethodPatch, path, body, headers)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return classifyStatusError(status, statusMessage(http.MethodPatch, path, status, responseBody))
	}
	return nil
}

func (g *HTTPEndpointGateway) Delete(ctx context.Context, path string) error {
	responseBody, _, status, err := g.execute(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return classifyStatusError(status, statusMessage(http.MethodDelete, path, status, responseBody))
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, validationError("endpoint.base-url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return nil, validationError("endpoint.base-url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, validationError("endpoint.base-url must use http or https", nil)
	}
	if parsed.Host == "" {
		return nil, validationError("endpoint.base-url host is required", nil)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	return parsed, nil
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}

	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
