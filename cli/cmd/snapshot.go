package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rackfish/rackfish/client"
	"github.com/rackfish/rackfish/internal/providers/inventory/gitstore"
	"github.com/rackfish/rackfish/inventory"
)

func newSnapshotCommand() *cobra.Command {
	var (
		path    string
		message string
	)

	cmd := &cobra.Command{
		Use:     "snapshot <path>",
		GroupID: groupUserFacing,
		Short:   "Capture a resource into the inventory store",
		Long: `Fetch the resource at the given path and record its attributes in the
context's inventory store. Collections record the collection itself and
every member. Git-backed inventories get one commit per run.`,
		Example: `  rackfish snapshot /redfish/v1/Systems/1
  rackfish snapshot /redfish/v1/Systems --message "pre-upgrade inventory"
  rackfish snapshot list
  rackfish snapshot history --max 5`,
		Args: cobra.MaximumNArgs(1),
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
			session, cfg, cleanup, err := newSessionClient(ctx)
			if cleanup != nil {
				defer cleanup()
			}
			if err != nil {
				return err
			}

			store, committer, err := openInventory(cfg)
			if err != nil {
				return err
			}
			if err := initInventory(ctx, store); err != nil {
				return err
			}

			captured, err := captureSnapshot(ctx, session, store, path)
			if err != nil {
				return err
			}

			if committer != nil {
				committed, err := committer.Commit(ctx, message)
				if err != nil {
					return err
				}
				if committed {
					successf(cmd, "captured %d snapshot(s) under %s and committed them", captured, path)
					return nil
				}
			}
			successf(cmd, "captured %d snapshot(s) under %s", captured, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Resource path to capture")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message for git-backed inventories")

	cmd.AddCommand(newSnapshotListCommand())
	cmd.AddCommand(newSnapshotShowCommand())
	cmd.AddCommand(newSnapshotHistoryCommand())

	return cmd
}

func initInventory(ctx context.Context, store inventory.Store) error {
	lifecycle, ok := store.(inventory.Lifecycle)
	if !ok {
		return nil
	}
	return lifecycle.Init(ctx)
}

// captureSnapshot saves the resource at path, and for collections also
// every member, returning how many snapshots were written.
func captureSnapshot(ctx context.Context, session *client.Client, store inventory.Store, path string) (int, error) {
	node := session.Resource(path)

	body, err := node.ToDict(ctx)
	if err != nil {
		return 0, err
	}
	if err := store.Save(ctx, node.Path(), body); err != nil {
		return 0, err
	}
	captured := 1

	isCollection, err := node.IsCollection(ctx)
	if err != nil {
		return captured, err
	}
	if !isCollection {
		return captured, nil
	}

	members, err := node.Members(ctx)
	if err != nil {
		return captured, err
	}
	for _, member := range members {
		memberBody, err := member.ToDict(ctx)
		if err != nil {
			return captured, err
		}
		if err := store.Save(ctx, member.Path(), memberBody); err != nil {
			return captured, err
		}
		captured++
	}
	return captured, nil
}

func newSnapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the resource paths recorded in the inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := resolveActiveContext(ctx)
			if err != nil {
				return err
			}
			store, _, err := openInventory(cfg)
			if err != nil {
				return err
			}

			addresses, err := store.List(ctx)
			if err != nil {
				return err
			}
			for _, address := range addresses {
				infof(cmd, "%s", address)
			}
			successf(cmd, "%d snapshot(s) in the inventory", len(addresses))
			return nil
		},
	}
}

func newSnapshotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Print a recorded snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := validateResourcePath(cmd, path); err != nil {
				return err
			}

			ctx := commandContext(cmd)
			cfg, err := resolveActiveContext(ctx)
			if err != nil {
				return err
			}
			store, _, err := openInventory(cfg)
			if err != nil {
				return err
			}

			snapshot, err := store.Get(ctx, path)
			if err != nil {
				return err
			}
			return printJSON(cmd, snapshot)
		},
	}
}

func newSnapshotHistoryCommand() *cobra.Command {
	var maxCount int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the commit history of a git-backed inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := resolveActiveContext(ctx)
			if err != nil {
				return err
			}
			store, _, err := openInventory(cfg)
			if err != nil {
				return err
			}
			historian, ok := store.(*gitstore.GitInventoryStore)
			if !ok {
				return usageError(cmd, "the configured inventory backend keeps no history (use inventory.git)")
			}

			entries, err := historian.History(ctx, maxCount)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				infof(cmd, "%s  %s  %s  %s", entry.Hash[:min(8, len(entry.Hash))], entry.Date.Format("2006-01-02 15:04:05"), entry.Author, entry.Subject)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxCount, "max", 20, "Maximum number of history entries to print")

	return cmd
}
