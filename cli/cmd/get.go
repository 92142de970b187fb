package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rackfish/rackfish/payload"
	"github.com/rackfish/rackfish/query"
)

func newGetCommand() *cobra.Command {
	var (
		path       string
		expression string
	)

	cmd := &cobra.Command{
		Use:     "get <path>",
		GroupID: groupUserFacing,
		Short:   "Fetch a resource and print it as JSON",
		Long: `Fetch the resource at the given path from the service endpoint and print
its attributes. Links to other resources are rendered as their target
paths; use --jq to project or filter the output.`,
		Example: `  rackfish get /redfish/v1/Systems/1
  rackfish get /redfish/v1/Systems/1 --jq .PowerState
  rackfish get /redfish/v1/Chassis/1/Thermal --jq '.Fans[].Reading'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			path, err = resolveSingleArg(cmd, path, args, "path")
			if err != nil {
				return err
			}
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
			body, err := node.ToDict(ctx)
			if err != nil {
				return err
			}

			var output payload.Value = body
			if expression != "" {
				output, err = query.Apply(ctx, body, expression)
				if err != nil {
					return err
				}
			}
			return printJSON(cmd, output)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Resource path to fetch")
	cmd.Flags().StringVar(&expression, "jq", "", "jq expression applied to the fetched resource")

	return cmd
}

func newListCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:     "ls <path>",
		GroupID: groupUserFacing,
		Short:   "List the members of a resource collection",
		Example: `  rackfish ls /redfish/v1/Systems
  rackfish ls /redfish/v1/Managers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			path, err = resolveSingleArg(cmd, path, args, "path")
			if err != nil {
				return err
			}
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
			isCollection, err := node.IsCollection(ctx)
			if err != nil {
				return err
			}
			if !isCollection {
				return usageError(cmd, "ls requires a collection path (use get for singular resources)")
			}

			members, err := node.Members(ctx)
			if err != nil {
				return err
			}
			for _, member := range members {
				identity, err := member.Identity(ctx)
				if err != nil {
					return err
				}
				infof(cmd, "%s\t%s", member.Path(), identity)
			}
			successf(cmd, "%d member(s) in %s", len(members), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Collection path to list")

	return cmd
}
