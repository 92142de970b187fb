package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rackfish/rackfish/config"
)

func runInteractiveContextSetup(ctx context.Context, service config.ContextService, prompt interactivePrompter, initialName string, force bool) error {
	name := strings.TrimSpace(initialName)
	var err error
	if name == "" {
		prompt.sectionHeader("Context name", "Give this configuration a short, unique name.")
		name, err = prompt.required("Context name: ")
		if err != nil {
			return err
		}
	}
	if err := validateContextName(name); err != nil {
		return err
	}

	exists, err := contextExists(ctx, service, name)
	if err != nil {
		return err
	}
	if exists && !force {
		return fmt.Errorf("context %q already exists (rerun with --force to replace it)", name)
	}

	cfg := config.Context{Name: name}

	endpoint, err := promptEndpointConfig(prompt)
	if err != nil {
		return err
	}
	cfg.Endpoint = endpoint

	inventoryCfg, err := promptInventoryConfig(prompt)
	if err != nil {
		return err
	}
	cfg.Inventory = inventoryCfg

	if exists {
		return service.Update(ctx, cfg)
	}
	return service.Create(ctx, cfg)
}

func contextExists(ctx context.Context, service config.ContextService, name string) (bool, error) {
	contexts, err := service.List(ctx)
	if err != nil {
		return false, err
	}
	for _, cfg := range contexts {
		if cfg.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func promptEndpointConfig(prompt interactivePrompter) (config.Endpoint, error) {
	prompt.sectionHeader("Service endpoint", "Provide the Redfish service base URL plus auth details.")

	baseURL, err := prompt.required("Service base URL: ")
	if err != nil {
		return config.Endpoint{}, err
	}

	endpoint := config.Endpoint{BaseURL: baseURL}

	authType, err := prompt.choice("Authentication", []string{"session", "basic", "none"}, "session", normalizeAuthType)
	if err != nil {
		return config.Endpoint{}, err
	}
	switch authType {
	case "basic":
		username, err := prompt.required("Username: ")
		if err != nil {
			return config.Endpoint{}, err
		}
		password, err := prompt.requiredSecret("Password: ")
		if err != nil {
			return config.Endpoint{}, err
		}
		endpoint.Auth = &config.EndpointAuth{
			BasicAuth: &config.BasicAuth{Username: username, Password: password},
		}
	case "session":
		username, err := prompt.required("Username: ")
		if err != nil {
			return config.Endpoint{}, err
		}
		password, err := prompt.requiredSecret("Password: ")
		if err != nil {
			return config.Endpoint{}, err
		}
		endpoint.Auth = &config.EndpointAuth{
			Session: &config.SessionAuth{Username: username, Password: password},
		}
	case "none":
	}

	if isHTTPSURL(baseURL) {
		tlsCfg, err := promptTLSConfig(prompt)
		if err != nil {
			return config.Endpoint{}, err
		}
		endpoint.TLS = tlsCfg
	}

	return endpoint, nil
}

// promptTLSConfig returns nil when the defaults (system roots, full
// verification) are all that is needed.
func promptTLSConfig(prompt interactivePrompter) (*config.TLS, error) {
	insecure, err := prompt.confirm("Skip TLS certificate verification? (common for BMCs with factory certs)", false)
	if err != nil {
		return nil, err
	}
	if insecure {
		return &config.TLS{InsecureSkipVerify: true}, nil
	}

	caFile, err := prompt.optional("CA certificate file (leave blank for system roots): ")
	if err != nil {
		return nil, err
	}
	caFile = strings.TrimSpace(caFile)
	if caFile == "" {
		return nil, nil
	}
	return &config.TLS{CACertFile: caFile}, nil
}

func promptInventoryConfig(prompt interactivePrompter) (*config.Inventory, error) {
	prompt.sectionHeader("Inventory", "Choose where resource snapshots are recorded, if anywhere.")

	backend, err := prompt.choice("Inventory backend", []string{"none", "filesystem", "git"}, "none", normalizeInventoryBackend)
	if err != nil {
		return nil, err
	}
	switch backend {
	case "none":
		return nil, nil
	case "filesystem":
		baseDir, err := prompt.required("Inventory base directory: ")
		if err != nil {
			return nil, err
		}
		return &config.Inventory{
			Filesystem: &config.FilesystemInventory{BaseDir: baseDir},
		}, nil
	case "git":
		return promptGitInventoryConfig(prompt)
	default:
		return nil, fmt.Errorf("unsupported inventory backend %q", backend)
	}
}

func promptGitInventoryConfig(prompt interactivePrompter) (*config.Inventory, error) {
	baseDir, err := prompt.required("Git inventory base directory: ")
	if err != nil {
		return nil, err
	}

	gitCfg := &config.GitInventory{BaseDir: baseDir}

	autoInit, err := prompt.confirm("Initialize the repository automatically on first use?", true)
	if err != nil {
		return nil, err
	}
	if !autoInit {
		gitCfg.AutoInit = boolPtr(false)
	}

	committerName, err := prompt.optional("Committer name (leave blank for the default): ")
	if err != nil {
		return nil, err
	}
	gitCfg.CommitterName = strings.TrimSpace(committerName)

	committerEmail, err := prompt.optional("Committer email (leave blank for the default): ")
	if err != nil {
		return nil, err
	}
	gitCfg.CommitterEmail = strings.TrimSpace(committerEmail)

	return &config.Inventory{Git: gitCfg}, nil
}

func normalizeAuthType(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none", "no", "anonymous":
		return "none", true
	case "basic", "basic-auth", "basic_auth":
		return "basic", true
	case "session", "token", "x-auth-token":
		return "session", true
	default:
		return "", false
	}
}

func normalizeInventoryBackend(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none", "no", "":
		return "none", true
	case "filesystem", "fs":
		return "filesystem", true
	case "git", "git-local":
		return "git", true
	default:
		return "", false
	}
}

func isHTTPSURL(raw string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "https://")
}

func boolPtr(value bool) *bool {
	return &value
}
