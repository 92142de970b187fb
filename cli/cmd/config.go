package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rackfish/rackfish/config"
)

func newConfigCommand() *cobra.Command {
	service := newContextService()

	cmd := &cobra.Command{
		Use:     "config",
		GroupID: groupUserFacing,
		Short:   "Manage rackfish contexts",
		Long: `Create and maintain contexts that describe which service endpoint rackfish
talks to, how it authenticates, and where inventory snapshots land.
Contexts let you switch between machines (a lab BMC, a production rack
manager) without retyping connection details.`,
		Example: `  # Set up a context interactively
  rackfish config setup

  # Switch the active context
  rackfish config use lab

  # Inspect what is configured
  rackfish config list`,
	}

	cmd.AddCommand(newConfigSetupCommand(service))
	cmd.AddCommand(newConfigUseCommand(service))
	cmd.AddCommand(newConfigDeleteCommand(service))
	cmd.AddCommand(newConfigRenameCommand(service))
	cmd.AddCommand(newConfigListCommand(service))
	cmd.AddCommand(newConfigCurrentCommand(service))
	cmd.AddCommand(newConfigCheckCommand(service))

	return cmd
}

func newConfigSetupCommand(service config.ContextService) *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "setup [name]",
		Short: "Create a context interactively",
		Long:  "Walk through endpoint, authentication, and inventory configuration with prompts. Passwords are read with echo disabled and stored in the context catalog.",
		Example: `  rackfish config setup
  rackfish config setup lab`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			name, err = resolveOptionalArg(cmd, name, args, "name")
			if err != nil {
				return err
			}
			prompt := newHuhPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err := runInteractiveContextSetup(cmd.Context(), service, prompt, name, force); err != nil {
				return err
			}
			successf(cmd, "context saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Context identifier to create")
	cmd.Flags().BoolVar(&force, "force", false, "Replace the context if it already exists")

	return cmd
}

func newConfigUseCommand(service config.ContextService) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "use <name>",
		Short:   "Activate a context for subsequent commands",
		Example: `  rackfish config use prod`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			name, err = resolveSingleArg(cmd, name, args, "name")
			if err != nil {
				return err
			}
			if err := service.SetCurrent(cmd.Context(), name); err != nil {
				return err
			}
			successf(cmd, "switched to context %q", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Context identifier to activate")

	return cmd
}

func newConfigDeleteCommand(service config.ContextService) *cobra.Command {
	var (
		name string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Short:   "Remove a context from the catalog",
		Example: `  rackfish config delete lab`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			name, err = resolveSingleArg(cmd, name, args, "name")
			if err != nil {
				return err
			}
			if err := confirmAction(cmd, yes, fmt.Sprintf("Delete context %q from the catalog?", name)); err != nil {
				return err
			}
			if err := service.Delete(cmd.Context(), name); err != nil {
				return err
			}
			successf(cmd, "deleted context %q", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Context identifier to delete")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip confirmation prompts")

	return cmd
}

func newConfigRenameCommand(service config.ContextService) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rename <current> <new>",
		Short:   "Rename an existing context",
		Args:    cobra.ExactArgs(2),
		Example: `  rackfish config rename lab staging`,
		RunE: func(cmd *cobra.Command, args []string) error {
			currentName, newName := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			if currentName == "" || newName == "" {
				return usageError(cmd, "both names are required")
			}
			if currentName == newName {
				return usageError(cmd, "new name must differ from the current name")
			}

			renamer, ok := service.(interface {
				Rename(ctx context.Context, currentName, newName string) error
			})
			if !ok {
				return errors.New("the context catalog does not support renaming")
			}
			if err := renamer.Rename(cmd.Context(), currentName, newName); err != nil {
				return err
			}
			successf(cmd, "renamed context %q to %q", currentName, newName)
			return nil
		},
	}

	return cmd
}

func newConfigCurrentCommand(service config.ContextService) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the name of the active context",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := service.GetCurrent(cmd.Context())
			if err != nil {
				return err
			}
			infof(cmd, "%s", current.Name)
			return nil
		},
	}
}

func newConfigListCommand(service config.ContextService) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every context in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			contexts, err := service.List(cmd.Context())
			if err != nil {
				return err
			}
			current, _ := service.GetCurrent(cmd.Context())
			for _, cfg := range contexts {
				if cfg.Name == current.Name {
					infof(cmd, "* %s (current)\t%s", cfg.Name, cfg.Endpoint.BaseURL)
					continue
				}
				infof(cmd, "- %s\t%s", cfg.Name, cfg.Endpoint.BaseURL)
			}
			return nil
		},
	}
}

func newConfigCheckCommand(service config.ContextService) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "check [name]",
		Short: "Validate a context without connecting anywhere",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			name, err = resolveOptionalArg(cmd, name, args, "name")
			if err != nil {
				return err
			}

			cfg, err := service.ResolveContext(cmd.Context(), config.ContextSelection{Name: name})
			if err != nil {
				return err
			}
			if err := service.Validate(cmd.Context(), cfg); err != nil {
				return err
			}
			successf(cmd, "context %q is valid", cfg.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Context identifier to check (defaults to the current one)")

	return cmd
}

func validateContextName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	return nil
}
