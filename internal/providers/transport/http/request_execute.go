package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/rackfish/rackfish/payload"
)

func (g *HTTPEndpointGateway) execute(
	ctx context.Context,
	method string,
	requestPath string,
	body payload.Value,
	headers map[string]string,
) ([]byte, http.Header, int, error) {
	request, err := g.newRequest(ctx, method, requestPath, body, headers)
	if err != nil {
		return nil, nil, 0, err
	}

	response, err := g.doRequest(ctx, request)
	if err != nil {
		return nil, nil, 0, transportError("remote request failed", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return nil, nil, 0, transportError("failed to read remote response body", err)
	}

	return responseBody, response.Header.Clone(), response.StatusCode, nil
}

func (g *HTTPEndpointGateway) newRequest(
	ctx context.Context,
	method string,
	requestPath string,
	body payload.Value,
	headers map[string]string,
) (*http.Request, error) {
	targetURL, err := g.resolveRequestURL(requestPath)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	hasBody := body != nil
	if hasBody {
		normalized, err := payload.Normalize(body)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(normalized)
		if err != nil {
			return nil, validationError("failed to encode JSON request body", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, targetURL, bodyReader)
	if err != nil {
		return nil, internalError("failed to create remote request", err)
	}

	request.Header.Set("Accept", defaultMediaType)
	if hasBody {
		request.Header.Set("Content-Type", defaultMediaType)
	}

	for _, key := range sortedKeys(g.defaultHeaders) {
		request.Header.Set(key, g.defaultHeaders[key])
	}
	for _, key := range sortedKeys(headers) {
		request.Header.Set(key, headers[key])
	}

	g.applyAuth(request)

	return request, nil
}

// Redfish addresses (@odata.id values) are server-absolute paths; they
// resolve against the endpoint host, not under any base-url prefix.
func (g *HTTPEndpointGateway) resolveRequestURL(requestPath string) (string, error) {
	trimmed := strings.TrimSpace(requestPath)
	if trimmed == "" {
		return "", validationError("request path is required", nil)
	}

	if parsed, err := url.Parse(trimmed); err == nil && parsed.Scheme != "" {
		if parsed.Host != g.baseURL.Host {
			return "", validationError("request URL host does not match endpoint.base-url", nil)
		}
		return trimmed, nil
	}

	target := *g.baseURL
	if strings.HasPrefix(trimmed, "/") {
		target.Path = trimmed
	} else {
		target.Path = g.baseURL.Path + "/" + trimmed
	}
	return target.String(), nil
}

func sortedKeys(values map[string]string) []string {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
