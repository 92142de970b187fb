package http

import (
	"context"
	"net/http"

	"github.com/rackfish/rackfish/config"
)

type authMode int

const (
	authModeNone authMode = iota
	authModeBasic
	authModeSession
)

type authConfig struct {
	mode      authMode
	basicAuth config.BasicAuth
	session   config.SessionAuth
}

func buildAuthConfig(cfg *config.EndpointAuth) (authConfig, error) {
	if cfg == nil {
		return authConfig{mode: authModeNone}, nil
	}

	if cfg.BasicAuth != nil && cfg.Session != nil {
		return authConfig{}, validationError("endpoint.auth must define at most one auth mode", nil)
	}

	switch {
	case cfg.BasicAuth != nil:
		basic := *cfg.BasicAuth
		if basic.Username == "" || basic.Password == "" {
			return authConfig{}, validationError("endpoint.auth.basic-auth requires username and password", nil)
		}
		return authConfig{mode: authModeBasic, basicAuth: basic}, nil
	case cfg.Session != nil:
		session := *cfg.Session
		if session.Username == "" || session.Password == "" {
			return authConfig{}, validationError("endpoint.auth.session requires username and password", nil)
		}
		return authConfig{mode: authModeSession, session: session}, nil
	default:
		return authConfig{mode: authModeNone}, nil
	}
}

func (g *HTTPEndpointGateway) applyAuth(request *http.Request) {
	switch g.auth.mode {
	case authModeBasic:
		request.SetBasicAuth(g.auth.basicAuth.Username, g.auth.basicAuth.Password)
	case authModeSession:
		g.sessionMu.Lock()
		token := g.sessionToken
		g.sessionMu.Unlock()
		if token != "" {
			request.Header.Set("X-Auth-Token", token)
		}
	}
}

// Login creates a Redfish session and keeps its token for subsequent
// requests. Endpoints with basic or no auth treat it as a no-op.
func (g *HTTPEndpointGateway) Login(ctx context.Context) error {
	if g.auth.mode != authModeSession {
		return nil
	}

	g.sessionMu.Lock()
	alreadyLoggedIn := g.sessionToken != ""
	g.sessionMu.Unlock()
	if alreadyLoggedIn {
		return nil
	}

	body := map[string]any{
		"UserName": g.auth.session.Username,
		"Password": g.auth.session.Password,
	}
	responseBody, header, status, err := g.execute(ctx, http.MethodPost, config.SessionsPath, body, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return authError(statusMessage(http.MethodPost, config.SessionsPath, status, responseBody), nil)
	}

	token := header.Get("X-Auth-Token")
	if token == "" {
		return authError("session service did not return an X-Auth-Token header", nil)
	}

	g.sessionMu.Lock()
	g.sessionToken = token
	g.sessionURI = header.Get("Location")
	g.sessionMu.Unlock()
	g.metrics.SessionOpened()

	return nil
}

// Logout deletes the server-side session when one is held. The local
// token is dropped even if the remote delete fails.
func (g *HTTPEndpointGateway) Logout(ctx context.Context) error {
	g.sessionMu.Lock()
	token := g.sessionToken
	sessionURI := g.sessionURI
	g.sessionMu.Unlock()

	if token == "" {
		return nil
	}

	// Delete while the token is still attached, then drop it locally
	// regardless of the remote outcome.
	var deleteErr error
	if sessionURI != "" {
		deleteErr = g.Delete(ctx, sessionURI)
	}

	g.sessionMu.Lock()
	g.sessionToken = ""
	g.sessionURI = ""
	g.sessionMu.Unlock()
	g.metrics.SessionClosed()

	return deleteErr
}
