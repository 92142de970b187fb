package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rackfish/rackfish/payload"
)

func newSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set <path> <attribute> <value>",
		GroupID: groupUserFacing,
		Short:   "Assign a single writable attribute on a resource",
		Long: `Patch one primitive attribute on the resource at the given path. The
value is read as JSON when it parses as JSON and as a plain string
otherwise. Structured attributes must go through patch instead.`,
		Example: `  rackfish set /redfish/v1/Systems/1 AssetTag web-frontend-03
  rackfish set /redfish/v1/Systems/1 IndicatorLED Blinking`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, attribute := args[0], args[1]
			if err := validateResourcePath(cmd, path); err != nil {
				return err
			}
			if strings.TrimSpace(attribute) == "" {
				return usageError(cmd, "attribute is required")
			}
			value, err := parseValueLiteral(args[2])
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			session, _, cleanup, err := newSessionClient(ctx)
			if cleanup != nil {
				defer cleanup()
			}
			if err != nil {
				return err
			}

			if err := session.Resource(path).Set(ctx, attribute, value); err != nil {
				return err
			}
			successf(cmd, "set %s on %s", attribute, path)
			return nil
		},
	}

	return cmd
}

func newPatchCommand() *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:     "patch <path> --payload <json|@file|->",
		GroupID: groupUserFacing,
		Short:   "Apply a bulk update to a resource",
		Long: `Send several attribute updates in a single request and re-fetch the
resource afterwards so dependent attributes reflect what the service
actually accepted.`,
		Example: `  rackfish patch /redfish/v1/Systems/1 --payload '{"AssetTag":"r2-u17","HostName":"db-02"}'
  rackfish patch /redfish/v1/Managers/1/NetworkProtocol --payload @ntp.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := validateResourcePath(cmd, path); err != nil {
				return err
			}
			updates, err := readPayloadObject(cmd, body)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			session, _, cleanup, err := newSessionClient(ctx)
			if cleanup != nil {
				defer cleanup()
			}
			if err != nil {
				return err
			}

			if err := session.Resource(path).Patch(ctx, updates); err != nil {
				return err
			}
			successf(cmd, "patched %s (%d attribute(s))", path, len(updates))
			return nil
		},
	}

	cmd.Flags().StringVar(&body, "payload", "", "Update body: inline JSON, @file, or - for stdin")
	_ = cmd.MarkFlagRequired("payload")

	return cmd
}

func newCreateCommand() *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:     "create <path> --payload <json|@file|->",
		GroupID: groupUserFacing,
		Short:   "Create a member in a resource collection",
		Example: `  rackfish create /redfish/v1/EventService/Subscriptions --payload @subscription.json
  rackfish create /redfish/v1/AccountService/Accounts --payload '{"UserName":"audit","RoleId":"ReadOnly"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := validateResourcePath(cmd, path); err != nil {
				return err
			}
			member, err := readPayloadObject(cmd, body)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			session, _, cleanup, err := newSessionClient(ctx)
			if cleanup != nil {
				defer cleanup()
			}
			if err != nil {
				return err
			}

			created, err := session.Resource(path).Create(ctx, member)
			if err != nil {
				return err
			}
			infof(cmd, "%s", created.Path())
			successf(cmd, "created member in %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&body, "payload", "", "Member body: inline JSON, @file, or - for stdin")
	_ = cmd.MarkFlagRequired("payload")

	return cmd
}

func newDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <path>",
		GroupID: groupUserFacing,
		Short:   "Delete a resource from the service",
		Example: `  rackfish delete /redfish/v1/AccountService/Accounts/7
  rackfish delete /redfish/v1/EventService/Subscriptions/2 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := validateResourcePath(cmd, path); err != nil {
				return err
			}
			if err := confirmAction(cmd, yes, fmt.Sprintf("Delete %s from the remote service?", path)); err != nil {
				return err
			}

			ctx := commandContext(cmd)
			session, _, cleanup, err := newSessionClient(ctx)
			if cleanup != nil {
				defer cleanup()
			}
			if err != nil {
				return err
			}

			if err := session.Resource(path).Delete(ctx); err != nil {
				return err
			}
			successf(cmd, "deleted %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip confirmation prompts")

	return cmd
}

// readPayloadObject accepts inline JSON, @file, or - (stdin) and
// requires the decoded body to be a JSON object.
func readPayloadObject(cmd *cobra.Command, raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, usageError(cmd, "--payload is required")
	}

	var data []byte
	switch {
	case raw == "-":
		read, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read payload from stdin: %w", err)
		}
		data = read
	case strings.HasPrefix(raw, "@"):
		read, err := os.ReadFile(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return nil, fmt.Errorf("read payload file: %w", err)
		}
		data = read
	default:
		data = []byte(raw)
	}

	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()
	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, usageError(cmd, fmt.Sprintf("payload is not valid JSON: %v", err))
	}
	normalized, err := payload.Normalize(decoded)
	if err != nil {
		return nil, err
	}
	body, ok := payload.AsMap(normalized)
	if !ok {
		return nil, usageError(cmd, "payload must be a JSON object")
	}
	return body, nil
}
