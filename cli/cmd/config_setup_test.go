package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rackfish/rackfish/config"
)

// scriptedPrompter replays canned answers so the setup flow can run
// without a terminal.
type scriptedPrompter struct {
	lines    []string
	choices  []string
	confirms []bool
}

func (s *scriptedPrompter) nextLine() (string, error) {
	if len(s.lines) == 0 {
		return "", fmt.Errorf("prompter script ran out of line answers")
	}
	value := s.lines[0]
	s.lines = s.lines[1:]
	return value, nil
}

func (s *scriptedPrompter) required(string) (string, error)       { return s.nextLine() }
func (s *scriptedPrompter) optional(string) (string, error)       { return s.nextLine() }
func (s *scriptedPrompter) requiredSecret(string) (string, error) { return s.nextLine() }

func (s *scriptedPrompter) choice(label string, options []string, defaultValue string, normalize func(string) (string, bool)) (string, error) {
	if len(s.choices) == 0 {
		return "", fmt.Errorf("prompter script ran out of choice answers for %s", label)
	}
	value := s.choices[0]
	s.choices = s.choices[1:]
	normalized, ok := normalize(value)
	if !ok {
		return "", fmt.Errorf("invalid scripted choice %q for %s", value, label)
	}
	return normalized, nil
}

func (s *scriptedPrompter) confirm(string, bool) (bool, error) {
	if len(s.confirms) == 0 {
		return false, fmt.Errorf("prompter script ran out of confirm answers")
	}
	value := s.confirms[0]
	s.confirms = s.confirms[1:]
	return value, nil
}

func (s *scriptedPrompter) sectionHeader(string, string) {}

func setTempCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contexts.yaml")
	t.Setenv(config.ContextFileEnvVar, path)
	return path
}

func TestConfigSetupSessionAuthWithGitInventory(t *testing.T) {
	setTempCatalog(t)
	service := newContextService()

	prompt := &scriptedPrompter{
		lines: []string{
			"https://10.0.0.5", // base URL
			"admin",            // username
			"hunter2",          // password
			"/tmp/inventory",   // git base dir
			"",                 // committer name
			"",                 // committer email
		},
		choices:  []string{"session", "git"},
		confirms: []bool{true, true}, // skip TLS verify, auto-init
	}

	if err := runInteractiveContextSetup(context.Background(), service, prompt, "lab", false); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cfg, err := service.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent failed: %v", err)
	}
	if cfg.Name != "lab" {
		t.Fatalf("expected lab as the current context, got %q", cfg.Name)
	}
	if cfg.Endpoint.BaseURL != "https://10.0.0.5" {
		t.Fatalf("unexpected base URL %q", cfg.Endpoint.BaseURL)
	}
	if cfg.Endpoint.Auth == nil || cfg.Endpoint.Auth.Session == nil {
		t.Fatalf("expected session auth, got %+v", cfg.Endpoint.Auth)
	}
	if cfg.Endpoint.Auth.Session.Password != "hunter2" {
		t.Fatalf("expected the scripted password to be stored")
	}
	if cfg.Endpoint.TLS == nil || !cfg.Endpoint.TLS.InsecureSkipVerify {
		t.Fatalf("expected insecure TLS to be recorded")
	}
	if cfg.Inventory == nil || cfg.Inventory.Git == nil {
		t.Fatalf("expected a git inventory section")
	}
	if cfg.Inventory.Git.BaseDir != "/tmp/inventory" {
		t.Fatalf("unexpected inventory base dir %q", cfg.Inventory.Git.BaseDir)
	}
	if !cfg.Inventory.Git.AutoInitEnabled() {
		t.Fatalf("expected auto-init to stay enabled")
	}
}

func TestConfigSetupAnonymousHTTPWithoutInventory(t *testing.T) {
	setTempCatalog(t)
	service := newContextService()

	prompt := &scriptedPrompter{
		lines:   []string{"http://emulator:8000"},
		choices: []string{"none", "none"},
	}

	if err := runInteractiveContextSetup(context.Background(), service, prompt, "emu", false); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cfg, err := service.ResolveContext(context.Background(), config.ContextSelection{Name: "emu"})
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}
	if cfg.Endpoint.Auth != nil {
		t.Fatalf("expected no auth section, got %+v", cfg.Endpoint.Auth)
	}
	if cfg.Endpoint.TLS != nil {
		t.Fatalf("http endpoints should not prompt for TLS")
	}
	if cfg.Inventory != nil {
		t.Fatalf("expected no inventory section")
	}
}

func TestConfigSetupRefusesToOverwriteWithoutForce(t *testing.T) {
	setTempCatalog(t)
	service := newContextService()

	first := &scriptedPrompter{
		lines:   []string{"http://emulator:8000"},
		choices: []string{"none", "none"},
	}
	if err := runInteractiveContextSetup(context.Background(), service, first, "emu", false); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	second := &scriptedPrompter{
		lines:   []string{"http://other:8000"},
		choices: []string{"none", "none"},
	}
	err := runInteractiveContextSetup(context.Background(), service, second, "emu", false)
	if err == nil {
		t.Fatalf("expected error for duplicate context")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error: %v", err)
	}

	replacement := &scriptedPrompter{
		lines:   []string{"http://other:8000"},
		choices: []string{"none", "none"},
	}
	if err := runInteractiveContextSetup(context.Background(), service, replacement, "emu", true); err != nil {
		t.Fatalf("forced setup failed: %v", err)
	}

	cfg, err := service.ResolveContext(context.Background(), config.ContextSelection{Name: "emu"})
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}
	if cfg.Endpoint.BaseURL != "http://other:8000" {
		t.Fatalf("expected the replacement endpoint, got %q", cfg.Endpoint.BaseURL)
	}
}
