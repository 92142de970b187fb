package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	noStatusOutput   bool
	contextName      string
	contextOverrides []string
)

var rootCmd = newRootCommand()

const (
	groupUtility    = "utility"
	groupUserFacing = "user"
)

func Execute() error {
	return rootCmd.Execute()
}

func NewRootCommand() *cobra.Command {
	return newRootCommand()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rackfish",
		Short: "Browse and operate Redfish-managed hardware through a lazy resource graph",
		Long: `Rackfish talks to Redfish service endpoints (BMCs, rack managers, smart
chassis) and exposes every resource the service describes without any
model-specific code baked in.

Use the CLI to:
  - fetch and filter resources anywhere in the service's resource tree
  - mutate writable attributes and invoke self-described actions safely
  - capture resource snapshots into a filesystem or git-backed inventory`,
		Example: `  # Fetch a system resource and project a single field
  rackfish get /redfish/v1/Systems/1 --jq .PowerState

  # List the members of a collection
  rackfish ls /redfish/v1/Systems

  # Invoke a validated reset action
  rackfish action invoke /redfish/v1/Systems/1 Reset -P ResetType=ForceOff`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetHelpCommandGroupID(groupUtility)
	cmd.SetCompletionCommandGroupID(groupUtility)

	cmd.PersistentFlags().BoolVar(&noStatusOutput, "no-status", false, "Suppress status messages and print only command output")
	cmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "Context to use instead of the catalog's current one")
	cmd.PersistentFlags().StringArrayVarP(&contextOverrides, "override", "o", nil, "Override a context field for this invocation (key=value, repeatable)")
	cmd.PersistentFlags().String("debug", "", "Print grouped debug information (groups: network, graph, inventory, all)")
	cmd.PersistentFlags().Lookup("debug").NoOptDefVal = debugGroupAll

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if err == nil {
			return nil
		}
		return usageError(cmd, err.Error())
	})

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return configureDebugSettings(cmd)
	}

	cmd.AddGroup(&cobra.Group{ID: groupUserFacing, Title: "Commands:"})
	cmd.AddGroup(&cobra.Group{ID: groupUtility, Title: "Utility Commands:"})

	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newPatchCommand())
	cmd.AddCommand(newCreateCommand())
	cmd.AddCommand(newDeleteCommand())
	cmd.AddCommand(newActionCommand())
	cmd.AddCommand(newSnapshotCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}
