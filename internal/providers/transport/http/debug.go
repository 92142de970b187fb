package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rackfish/rackfish/config"
	"github.com/rackfish/rackfish/debugctx"
)

type tlsDebugInfo struct {
	enabled            bool
	insecureSkipVerify bool
	caCertFile         string
}

func newTLSDebugInfo(tlsSettings *config.TLS) tlsDebugInfo {
	if tlsSettings == nil {
		return tlsDebugInfo{}
	}

	return tlsDebugInfo{
		enabled:            true,
		insecureSkipVerify: tlsSettings.InsecureSkipVerify,
		caCertFile:         strings.TrimSpace(tlsSettings.CACertFile),
	}
}

func (g *HTTPEndpointGateway) doRequest(ctx context.Context, request *http.Request) (*http.Response, error) {
	debugctx.Printf(
		ctx,
		debugctx.GroupNetwork,
		"http request method=%q url=%q tls_enabled=%t tls_insecure_skip_verify=%t tls_ca_cert_file=%q",
		request.Method,
		redactURLForDebug(request.URL),
		g.tlsDebug.enabled,
		g.tlsDebug.insecureSkipVerify,
		g.tlsDebug.caCertFile,
	)

	started := time.Now()
	response, err := g.client.Do(request)
	elapsed := time.Since(started)

	if err != nil {
		g.metrics.ObserveRequest(request.Method, "error", elapsed)
		debugctx.Printf(
			ctx,
			debugctx.GroupNetwork,
			"http request failed method=%q url=%q error=%v",
			request.Method,
			redactURLForDebug(request.URL),
			err,
		)
		return nil, err
	}

	g.metrics.ObserveRequest(request.Method, outcomeForStatus(response.StatusCode), elapsed)
	debugctx.Printf(
		ctx,
		debugctx.GroupNetwork,
		"http response method=%q url=%q status=%d elapsed=%s",
		request.Method,
		redactURLForDebug(request.URL),
		response.StatusCode,
		elapsed.Round(time.Millisecond),
	)
	return response, nil
}

func outcomeForStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "ok"
	}
	return "error"
}

func redactURLForDebug(target *url.URL) string {
	if target == nil {
		return ""
	}
	redacted := *target
	redacted.User = nil
	redacted.RawQuery = ""
	return redacted.String()
}
