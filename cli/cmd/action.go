package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newActionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "action",
		GroupID: groupUserFacing,
		Short:   "Discover and invoke the actions a resource advertises",
		Long: `Resources describe their own actions. The list subcommand shows what a
resource can do; invoke checks the parameters against the action's
published schema before sending anything to the service.`,
		Example: `  rackfish action list /redfish/v1/Systems/1
  rackfish action invoke /redfish/v1/Systems/1 Reset -P ResetType=ForceOff
  rackfish action invoke /redfish/v1/Managers/1 Reset --payload '{"ResetType":"GracefulRestart"}'`,
	}

	cmd.AddCommand(newActionListCommand())
	cmd.AddCommand(newActionInvokeCommand())

	return cmd
}

func newActionListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <path>",
		Short: "List the actions a resource advertises, with their parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := validateResourcePath(cmd, path); err != nil {
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

			node := session.Resource(path)
			names, err := node.Operations(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				successf(cmd, "%s advertises no actions", path)
				return nil
			}

			for _, name := range names {
				op, err := node.Operation(ctx, name)
				if err != nil {
					return err
				}
				specs := op.Parameters()
				if len(specs) == 0 {
					infof(cmd, "%s", name)
					continue
				}
				infof(cmd, "%s", name)
				for _, spec := range specs {
					infof(cmd, "  %s", describeParameter(spec.Name, spec.Required, spec.DataType, spec.AllowableValues))
				}
			}
			return nil
		},
	}

	return cmd
}

func newActionInvokeCommand() *cobra.Command {
	var (
		paramFlags []string
		body       string
	)

	cmd := &cobra.Command{
		Use:   "invoke <path> <action> [-P key=value ...]",
		Short: "Invoke an action after validating its parameters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, name := args[0], args[1]
			if err := validateResourcePath(cmd, path); err != nil {
				return err
			}
			if strings.TrimSpace(name) == "" {
				return usageError(cmd, "action name is required")
			}

			params := map[string]any{}
			if strings.TrimSpace(body) != "" {
				decoded, err := readPayloadObject(cmd, body)
				if err != nil {
					return err
				}
				params = decoded
			}
			for _, entry := range paramFlags {
				key, raw, found := strings.Cut(entry, "=")
				key = strings.TrimSpace(key)
				if !found || key == "" {
					return usageError(cmd, fmt.Sprintf("invalid parameter %q (expected key=value)", entry))
				}
				value, err := parseValueLiteral(raw)
				if err != nil {
					return err
				}
				params[key] = value
			}

			ctx := commandContext(cmd)
			session, _, cleanup, err := newSessionClient(ctx)
			if cleanup != nil {
				defer cleanup()
			}
			if err != nil {
				return err
			}

			result, err := session.Resource(path).Invoke(ctx, name, params)
			if err != nil {
				return err
			}
			if result != nil {
				if err := printJSON(cmd, result); err != nil {
					return err
				}
			}
			successf(cmd, "invoked %s on %s", name, path)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "P", nil, "Action parameter (key=value, repeatable)")
	cmd.Flags().StringVar(&body, "payload", "", "Action parameters as inline JSON, @file, or - for stdin")

	return cmd
}

func describeParameter(name string, required bool, dataType string, allowable []any) string {
	var b strings.Builder
	b.WriteString(name)
	if dataType != "" {
		fmt.Fprintf(&b, " (%s)", dataType)
	}
	if required {
		b.WriteString(" required")
	}
	if len(allowable) > 0 {
		values := make([]string, 0, len(allowable))
		for _, value := range allowable {
			values = append(values, fmt.Sprintf("%v", value))
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(values, ", "))
	}
	return b.String()
}
