package file

import (
	"fmt"
	"sort"

	"github.com/rackfish/rackfish/config"
)

func validateCatalog(contextCatalog config.ContextCatalog) error {
	if len(contextCatalog.Contexts) == 0 {
		if contextCatalog.CurrentCtx != "" {
			return validationError("current-ctx must be empty when contexts list is empty", nil)
		}
		return nil
	}

	seen := map[string]struct{}{}
	for _, item := range contextCatalog.Contexts {
		if item.Name == "" {
			return validationError("context name must not be empty", nil)
		}
		if _, exists := seen[item.Name]; exists {
			return validationError(fmt.Sprintf("duplicate context name %q", item.Name), nil)
		}
		seen[item.Name] = struct{}{}

		if err := validateConfig(item); err != nil {
			return err
		}
	}

	if contextCatalog.CurrentCtx == "" {
		return validationError("current-ctx must be set when contexts are defined", nil)
	}

	if _, exists := seen[contextCatalog.CurrentCtx]; !exists {
		return validationError(fmt.Sprintf("current-ctx %q does not match any context", contextCatalog.CurrentCtx), nil)
	}

	return nil
}

func validateConfig(cfg config.Context) error {
	if cfg.Name == "" {
		return validationError("context name must not be empty", nil)
	}

	if err := validateEndpoint(cfg.Endpoint); err != nil {
		return err
	}

	return validateInventory(cfg.Inventory)
}

func validateEndpoint(endpoint config.Endpoint) error {
	if endpoint.BaseURL == "" {
		return validationError("endpoint.base-url is required", nil)
	}

	if endpoint.Auth == nil {
		return nil
	}

	if countSet(endpoint.Auth.BasicAuth != nil, endpoint.Auth.Session != nil) > 1 {
		return validationError("endpoint.auth must define at most one of basic-auth or session", nil)
	}

	if endpoint.Auth.BasicAuth != nil {
		basic := endpoint.Auth.BasicAuth
		if basic.Username == "" || basic.Password == "" {
			return validationError("endpoint.auth.basic-auth requires username and password", nil)
		}
	}

	if endpoint.Auth.Session != nil {
		session := endpoint.Auth.Session
		if session.Username == "" || session.Password == "" {
			return validationError("endpoint.auth.session requires username and password", nil)
		}
	}

	return nil
}

func validateInventory(inventory *config.Inventory) error {
	if inventory == nil {
		return nil
	}

	if countSet(inventory.Filesystem != nil, inventory.Git != nil) != 1 {
		return validationError("inventory must define exactly one of filesystem or git", nil)
	}

	if inventory.Filesystem != nil && inventory.Filesystem.BaseDir == "" {
		return validationError("inventory.filesystem.base-dir is required", nil)
	}

	if inventory.Git != nil && inventory.Git.BaseDir == "" {
		return validationError("inventory.git.base-dir is required", nil)
	}

	return nil
}

func applyOverrides(cfg config.Context, overrides map[string]string) (config.Context, error) {
	for _, key := range sortedOverrideKeys(overrides) {
		value := overrides[key]
		switch key {
		case "endpoint.base-url":
			cfg.Endpoint.BaseURL = value
		case "inventory.filesystem.base-dir":
			if cfg.Inventory == nil || cfg.Inventory.Filesystem == nil {
				return config.Context{}, validationError("override inventory.filesystem.base-dir requires inventory.filesystem to be configured", nil)
			}
			cfg.Inventory.Filesystem.BaseDir = value
		case "inventory.git.base-dir":
			if cfg.Inventory == nil || cfg.Inventory.Git == nil {
				return config.Context{}, validationError("override inventory.git.base-dir requires inventory.git to be configured", nil)
			}
			cfg.Inventory.Git.BaseDir = value
		default:
			return config.Context{}, unknownOverrideError(key)
		}
	}

	return cfg, nil
}

func sortedOverrideKeys(overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func countSet(values ...bool) int {
	count := 0
	for _, value := range values {
		if value {
			count++
		}
	}
	return count
}
