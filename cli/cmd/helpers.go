package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/rackfish/rackfish/client"
	"github.com/rackfish/rackfish/config"
	"github.com/rackfish/rackfish/internal/providers/config/file"
	"github.com/rackfish/rackfish/internal/providers/inventory/fsstore"
	"github.com/rackfish/rackfish/internal/providers/inventory/gitstore"
	"github.com/rackfish/rackfish/inventory"
	"github.com/rackfish/rackfish/payload"
)

type handledError struct {
	msg string
}

func (handledError) handledMarker() {}

func (e handledError) Error() string {
	return e.msg
}

type handled interface {
	handledMarker()
}

func newContextService() config.ContextService {
	return file.NewFileContextService("")
}

func resolveActiveContext(ctx context.Context) (config.Context, error) {
	selection := config.ContextSelection{Name: strings.TrimSpace(contextName)}
	for _, entry := range contextOverrides {
		key, value, found := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return config.Context{}, fmt.Errorf("invalid override %q (expected key=value)", entry)
		}
		if selection.Overrides == nil {
			selection.Overrides = map[string]string{}
		}
		selection.Overrides[key] = value
	}
	return newContextService().ResolveContext(ctx, selection)
}

// newSessionClient resolves the active context and opens a client
// against its endpoint. The cleanup closes the session (logging out
// when session auth is in use) and is safe to call more than once.
func newSessionClient(ctx context.Context) (*client.Client, config.Context, func(), error) {
	cfg, err := resolveActiveContext(ctx)
	if err != nil {
		return nil, config.Context{}, nil, err
	}

	session, err := client.New(cfg.Endpoint)
	if err != nil {
		return nil, config.Context{}, nil, err
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			_ = session.Close(context.Background())
		})
	}

	if _, err := session.Connect(ctx); err != nil {
		return nil, config.Context{}, cleanup, err
	}
	return session, cfg, cleanup, nil
}

// openInventory builds the snapshot store the context configures. The
// committer is nil for filesystem-backed inventories.
func openInventory(cfg config.Context) (inventory.Store, inventory.Committer, error) {
	if cfg.Inventory == nil {
		return nil, nil, fmt.Errorf("context %q has no inventory section (add one with `rackfish config setup`)", cfg.Name)
	}
	if cfg.Inventory.Git != nil {
		store := gitstore.NewGitInventoryStore(*cfg.Inventory.Git)
		return store, store, nil
	}
	if cfg.Inventory.Filesystem != nil {
		return fsstore.NewFilesystemInventoryStore(cfg.Inventory.Filesystem.BaseDir), nil, nil
	}
	return nil, nil, fmt.Errorf("context %q configures no inventory backend", cfg.Name)
}

func usageError(cmd *cobra.Command, message string) error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = "invalid command usage"
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())

	return handledError{msg: msg}
}

func validateResourcePath(cmd *cobra.Command, path string) error {
	if _, err := inventory.NormalizeAddress(path); err != nil {
		return usageError(cmd, err.Error())
	}
	return nil
}

func printJSON(cmd *cobra.Command, value payload.Value) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}

// parseValueLiteral reads a CLI value argument as JSON when possible
// and falls back to a bare string, so `set ... 42`, `set ... true` and
// `set ... standby` all do what they look like.
func parseValueLiteral(raw string) (payload.Value, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.UseNumber()
	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return raw, nil
	}
	return payload.Normalize(decoded)
}

func successf(cmd *cobra.Command, format string, args ...any) {
	if noStatusOutput {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "[OK] "+format+"\n", args...)
}

func infof(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

func confirmAction(cmd *cobra.Command, skipPrompt bool, message string) error {
	if skipPrompt {
		return nil
	}
	prompt := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	confirmed, err := prompt.confirm(message, false)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
		return handledError{msg: "operation cancelled"}
	}
	return nil
}

func resolveOptionalArg(cmd *cobra.Command, value string, args []string, label string) (string, error) {
	if len(args) > 1 {
		return "", usageError(cmd, fmt.Sprintf("expected <%s>", label))
	}
	value = strings.TrimSpace(value)
	if len(args) == 1 {
		arg := strings.TrimSpace(args[0])
		if arg != "" {
			if value != "" && value != arg {
				return "", usageError(cmd, fmt.Sprintf("%s specified twice", label))
			}
			if value == "" {
				value = arg
			}
		}
	}
	return value, nil
}

func resolveSingleArg(cmd *cobra.Command, value string, args []string, label string) (string, error) {
	value, err := resolveOptionalArg(cmd, value, args, label)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		return "", usageError(cmd, fmt.Sprintf("%s is required", label))
	}
	return value, nil
}

func IsHandledError(err error) bool {
	if err == nil {
		return false
	}
	var h handled
	return errors.As(err, &h)
}
