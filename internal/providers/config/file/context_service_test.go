package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rackfish/rackfish/config"
	"github.com/rackfish/rackfish/faults"
)

func TestDecodeCatalogSuccess(t *testing.T) {
	t.Parallel()

	contextCatalog, err := decodeCatalog([]byte(validContextCatalogYAML))
	if err != nil {
		t.Fatalf("decodeCatalog returned error: %v", err)
	}
	if len(contextCatalog.Contexts) != 1 {
		t.Fatalf("expected 1 context, got %d", len(contextCatalog.Contexts))
	}
	if contextCatalog.CurrentCtx != "lab" {
		t.Fatalf("expected current-ctx lab, got %q", contextCatalog.CurrentCtx)
	}
}

func TestDecodeCatalogRejectsUnknownField(t *testing.T) {
	t.Parallel()

	invalidYAML := `
contexts:
  - name: lab
    endpoint:
      base-url: https://bmc.lab.example.com
      unknown-key: true
current-ctx: lab
`
	_, err := decodeCatalog([]byte(invalidYAML))
	if err == nil {
		t.Fatal("expected unknown field to fail decode")
	}
}

func TestValidateCatalogCurrentContextMissing(t *testing.T) {
	t.Parallel()

	contextCatalog := config.ContextCatalog{
		Contexts: []config.Context{{
			Name:     "lab",
			Endpoint: validEndpoint(),
		}},
		CurrentCtx: "prod",
	}

	err := validateCatalog(contextCatalog)
	if err == nil {
		t.Fatal("expected current-ctx mismatch error")
	}
}

func TestValidateCatalogDuplicateContextNames(t *testing.T) {
	t.Parallel()

	contextCatalog := config.ContextCatalog{
		Contexts: []config.Context{
			{Name: "lab", Endpoint: validEndpoint()},
			{Name: "lab", Endpoint: validEndpoint()},
		},
		CurrentCtx: "lab",
	}

	err := validateCatalog(contextCatalog)
	if err == nil {
		t.Fatal("expected duplicate name validation error")
	}
}

func TestValidateConfigRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.Context
	}{
		{
			name: "missing_base_url",
			cfg: config.Context{
				Name: "lab",
			},
		},
		{
			name: "multiple_auth_modes",
			cfg: config.Context{
				Name: "lab",
				Endpoint: config.Endpoint{
					BaseURL: "https://bmc.lab.example.com",
					Auth: &config.EndpointAuth{
						BasicAuth: &config.BasicAuth{Username: "admin", Password: "secret"},
						Session:   &config.SessionAuth{Username: "admin", Password: "secret"},
					},
				},
			},
		},
		{
			name: "session_missing_password",
			cfg: config.Context{
				Name: "lab",
				Endpoint: config.Endpoint{
					BaseURL: "https://bmc.lab.example.com",
					Auth: &config.EndpointAuth{
						Session: &config.SessionAuth{Username: "admin"},
					},
				},
			},
		},
		{
			name: "inventory_multiple_backends",
			cfg: config.Context{
				Name:     "lab",
				Endpoint: validEndpoint(),
				Inventory: &config.Inventory{
					Filesystem: &config.FilesystemInventory{BaseDir: "/tmp/inv"},
					Git:        &config.GitInventory{BaseDir: "/tmp/inv"},
				},
			},
		},
		{
			name: "inventory_git_missing_base_dir",
			cfg: config.Context{
				Name:      "lab",
				Endpoint:  validEndpoint(),
				Inventory: &config.Inventory{Git: &config.GitInventory{}},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := validateConfig(tt.cfg); err == nil {
				t.Fatalf("expected validation failure for %s", tt.name)
			}
		})
	}
}

func TestValidateConfigAllowsAnonymousEndpointWithoutInventory(t *testing.T) {
	t.Parallel()

	err := validateConfig(config.Context{
		Name:     "open",
		Endpoint: config.Endpoint{BaseURL: "http://localhost:8000"},
	})
	if err != nil {
		t.Fatalf("expected auth and inventory to be optional, got error: %v", err)
	}
}

func TestResolveCatalogPathDefaultAndEnv(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to resolve home dir: %v", err)
	}

	resolvedDefault, err := resolveCatalogPath(config.DefaultContextCatalogPath)
	if err != nil {
		t.Fatalf("resolveCatalogPath default failed: %v", err)
	}

	expectedDefault := filepath.Join(home, ".rackfish/contexts.yaml")
	if resolvedDefault != expectedDefault {
		t.Fatalf("expected %q, got %q", expectedDefault, resolvedDefault)
	}

	envPath := filepath.Join(t.TempDir(), "contexts.yaml")
	t.Setenv(config.ContextFileEnvVar, envPath)
	resolvedFromEnv, err := resolveCatalogPath("")
	if err != nil {
		t.Fatalf("resolveCatalogPath env failed: %v", err)
	}
	if resolvedFromEnv != envPath {
		t.Fatalf("expected env path %q, got %q", envPath, resolvedFromEnv)
	}
}

func TestResolveContextSelectionAndOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contexts.yaml")
	if err := os.WriteFile(path, []byte(multiContextCatalogYAML), 0o600); err != nil {
		t.Fatalf("failed to write test contextCatalog: %v", err)
	}

	contextService := NewFileContextService(path)

	t.Run("explicit_context_selected", func(t *testing.T) {
		t.Parallel()

		resolvedContext, err := contextService.ResolveContext(context.Background(), config.ContextSelection{Name: "prod"})
		if err != nil {
			t.Fatalf("ResolveContext returned error: %v", err)
		}
		if resolvedContext.Name != "prod" {
			t.Fatalf("expected resolved context name prod, got %q", resolvedContext.Name)
		}
		if resolvedContext.Inventory == nil || resolvedContext.Inventory.Git == nil {
			t.Fatal("expected git inventory to be configured")
		}
	})

	t.Run("empty_name_uses_current_context", func(t *testing.T) {
		t.Parallel()

		resolvedContext, err := contextService.ResolveContext(context.Background(), config.ContextSelection{})
		if err != nil {
			t.Fatalf("ResolveContext returned error: %v", err)
		}
		if resolvedContext.Name != "lab" {
			t.Fatalf("expected current context lab, got %q", resolvedContext.Name)
		}
	})

	t.Run("unknown_context_returns_not_found", func(t *testing.T) {
		t.Parallel()

		_, err := contextService.ResolveContext(context.Background(), config.ContextSelection{Name: "missing"})
		if err == nil {
			t.Fatal("expected unknown context to fail")
		}
		if !strings.Contains(err.Error(), "context \"missing\" not found") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("runtime_override_takes_precedence", func(t *testing.T) {
		t.Parallel()

		resolvedContext, err := contextService.ResolveContext(context.Background(), config.ContextSelection{
			Name:      "lab",
			Overrides: map[string]string{"endpoint.base-url": "https://bmc-standby.lab.example.com"},
		})
		if err != nil {
			t.Fatalf("ResolveContext returned error: %v", err)
		}
		if resolvedContext.Endpoint.BaseURL != "https://bmc-standby.lab.example.com" {
			t.Fatalf("expected override base-url, got %q", resolvedContext.Endpoint.BaseURL)
		}
	})

	t.Run("unknown_override_fails_deterministically", func(t *testing.T) {
		t.Parallel()

		_, err := contextService.ResolveContext(context.Background(), config.ContextSelection{
			Name: "lab",
			Overrides: map[string]string{
				"endpoint.base-url": "https://x",
				"aaa.unknown":       "x",
			},
		})
		if err == nil {
			t.Fatal("expected invalid overrides to fail")
		}
		if !strings.Contains(err.Error(), "unknown override key \"aaa.unknown\"") {
			t.Fatalf("expected failure on alphabetically first invalid key, got: %v", err)
		}
	})

	t.Run("inventory_override_requires_backend", func(t *testing.T) {
		t.Parallel()

		_, err := contextService.ResolveContext(context.Background(), config.ContextSelection{
			Name:      "lab",
			Overrides: map[string]string{"inventory.git.base-dir": "/tmp/elsewhere"},
		})
		assertTypedCategory(t, err, faults.ValidationError)
	})
}

func TestFileContextServiceCreateWritesUserOnlyCatalogPermissions(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("POSIX file mode semantics are not portable on Windows")
	}

	path := filepath.Join(t.TempDir(), "contexts.yaml")
	contextService := NewFileContextService(path)

	err := contextService.Create(context.Background(), config.Context{
		Name:     "lab",
		Endpoint: validEndpoint(),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat catalog: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Fatalf("expected 0600 permissions, got %#o", got)
	}
}

func TestFileContextServiceLoadCatalogNormalizesPermissiveFileMode(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("POSIX file mode semantics are not portable on Windows")
	}

	path := filepath.Join(t.TempDir(), "contexts.yaml")
	if err := os.WriteFile(path, []byte(validContextCatalogYAML), 0o644); err != nil {
		t.Fatalf("failed to write test catalog: %v", err)
	}

	contextService := NewFileContextService(path)
	if _, err := contextService.List(context.Background()); err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat catalog: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Fatalf("expected normalized 0600 permissions, got %#o", got)
	}
}

func TestContextServiceMissingCatalogBehaviors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contexts.yaml")
	contextService := NewFileContextService(path)

	items, err := contextService.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %d items", len(items))
	}

	_, err = contextService.GetCurrent(context.Background())
	assertTypedCategory(t, err, faults.NotFoundError)
	if !strings.Contains(err.Error(), "current context not set") {
		t.Fatalf("unexpected get current error: %v", err)
	}

	_, err = contextService.ResolveContext(context.Background(), config.ContextSelection{})
	assertTypedCategory(t, err, faults.NotFoundError)

	if err := contextService.SetCurrent(context.Background(), "missing"); err == nil {
		t.Fatal("expected SetCurrent on empty contextCatalog to fail")
	} else {
		assertTypedCategory(t, err, faults.NotFoundError)
	}
}

func TestContextServiceCRUDLifecycle(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contexts.yaml")
	contextService := NewFileContextService(path)

	lab := config.Context{
		Name:     "lab",
		Endpoint: validEndpoint(),
	}
	if err := contextService.Create(context.Background(), lab); err != nil {
		t.Fatalf("Create(lab) returned error: %v", err)
	}

	prod := config.Context{
		Name:     "prod",
		Endpoint: validEndpoint(),
		Inventory: &config.Inventory{
			Filesystem: &config.FilesystemInventory{BaseDir: "/tmp/prod-inventory"},
		},
	}
	if err := contextService.Create(context.Background(), prod); err != nil {
		t.Fatalf("Create(prod) returned error: %v", err)
	}

	current, err := contextService.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent returned error: %v", err)
	}
	if current.Name != "lab" {
		t.Fatalf("expected current context lab, got %q", current.Name)
	}

	if err := contextService.SetCurrent(context.Background(), "prod"); err != nil {
		t.Fatalf("SetCurrent(prod) returned error: %v", err)
	}

	current, err = contextService.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent after SetCurrent returned error: %v", err)
	}
	if current.Name != "prod" {
		t.Fatalf("expected current context prod, got %q", current.Name)
	}

	if err := contextService.Rename(context.Background(), "prod", "stage"); err != nil {
		t.Fatalf("Rename(prod->stage) returned error: %v", err)
	}

	current, err = contextService.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent after Rename returned error: %v", err)
	}
	if current.Name != "stage" {
		t.Fatalf("expected current context stage after rename, got %q", current.Name)
	}

	if err := contextService.Update(context.Background(), config.Context{
		Name: "stage",
		Endpoint: config.Endpoint{
			BaseURL: "https://bmc-stage.example.com",
		},
	}); err != nil {
		t.Fatalf("Update(stage) returned error: %v", err)
	}

	resolved, err := contextService.ResolveContext(context.Background(), config.ContextSelection{Name: "stage"})
	if err != nil {
		t.Fatalf("ResolveContext(stage) returned error: %v", err)
	}
	if resolved.Endpoint.BaseURL != "https://bmc-stage.example.com" {
		t.Fatalf("expected updated base-url, got %q", resolved.Endpoint.BaseURL)
	}

	if err := contextService.Delete(context.Background(), "stage"); err != nil {
		t.Fatalf("Delete(stage) returned error: %v", err)
	}

	current, err = contextService.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent after deleting current context returned error: %v", err)
	}
	if current.Name != "lab" {
		t.Fatalf("expected fallback current context lab, got %q", current.Name)
	}

	if err := contextService.Delete(context.Background(), "lab"); err != nil {
		t.Fatalf("Delete(lab) returned error: %v", err)
	}

	items, err := contextService.List(context.Background())
	if err != nil {
		t.Fatalf("List after deleting all contexts returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty contextCatalog, got %#v", items)
	}

	if _, err := contextService.GetCurrent(context.Background()); err == nil {
		t.Fatal("expected GetCurrent to fail when contextCatalog is empty")
	} else {
		assertTypedCategory(t, err, faults.NotFoundError)
	}
}

func TestSetCurrentPreservesContextOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contexts.yaml")
	contextService := NewFileContextService(path)

	for _, name := range []string{"a", "b", "c"} {
		if err := contextService.Create(context.Background(), config.Context{
			Name: name,
			Endpoint: config.Endpoint{
				BaseURL: "https://" + name + ".example.com",
			},
		}); err != nil {
			t.Fatalf("Create(%q) returned error: %v", name, err)
		}
	}

	if err := contextService.SetCurrent(context.Background(), "b"); err != nil {
		t.Fatalf("SetCurrent(b) returned error: %v", err)
	}

	items, err := contextService.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 contexts, got %d", len(items))
	}
	if items[0].Name != "a" || items[1].Name != "b" || items[2].Name != "c" {
		t.Fatalf("expected preserved order [a b c], got [%s %s %s]", items[0].Name, items[1].Name, items[2].Name)
	}
}

func TestMutationOnMissingCatalogReturnsNotFound(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contexts.yaml")
	contextService := NewFileContextService(path)

	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "update",
			run: func() error {
				return contextService.Update(context.Background(), config.Context{
					Name:     "missing",
					Endpoint: validEndpoint(),
				})
			},
		},
		{
			name: "delete",
			run: func() error {
				return contextService.Delete(context.Background(), "missing")
			},
		},
		{
			name: "rename",
			run: func() error {
				return contextService.Rename(context.Background(), "missing", "renamed")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			assertTypedCategory(t, err, faults.NotFoundError)
		})
	}
}

func assertTypedCategory(t *testing.T, err error, category faults.ErrorCategory) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %q error, got nil", category)
	}

	var typedErr *faults.TypedError
	if !errors.As(err, &typedErr) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typedErr.Category != category {
		t.Fatalf("expected %q category, got %q", category, typedErr.Category)
	}
}

func validEndpoint() config.Endpoint {
	return config.Endpoint{
		BaseURL: "https://bmc.lab.example.com",
		Auth: &config.EndpointAuth{
			Session: &config.SessionAuth{Username: "admin", Password: "secret"},
		},
	}
}

const validContextCatalogYAML = `
contexts:
  - name: lab
    endpoint:
      base-url: https://bmc.lab.example.com
      auth:
        session:
          username: admin
          password: secret
    inventory:
      filesystem:
        base-dir: /tmp/lab-inventory
current-ctx: lab
`

const multiContextCatalogYAML = `
contexts:
  - name: lab
    endpoint:
      base-url: https://bmc.lab.example.com
      auth:
        session:
          username: admin
          password: secret

  - name: prod
    endpoint:
      base-url: https://bmc.prod.example.com
      auth:
        basic-auth:
          username: operator
          password: secret
      tls:
        insecure-skip-verify: true
    inventory:
      git:
        base-dir: /var/lib/rackfish/prod-inventory
        committer-name: rackfish
        committer-email: rackfish@example.com

current-ctx: lab
`
