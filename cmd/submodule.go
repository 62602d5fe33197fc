package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path...]",
		Short: "Initialize submodules",
		Long:  `Initialize the given submodule paths, or every submodule when no path is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) == 0 {
				return c.submoduleRepo.InitSubmodules(ctx)
			}
			for _, p := range args {
				if err := c.submoduleRepo.InitSubmodule(ctx, domain.SubmoduleEntry{Path: p}); err != nil {
					return fmt.Errorf("init submodule %q: %w", p, err)
				}
			}
			return nil
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update [path...]",
		Short: "Update submodules recursively",
		Long: `Recursively update the given submodule paths, or every submodule when no
path is given. Local changes are kept; use force-update to discard them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) == 0 {
				return c.submoduleRepo.UpdateSubmodules(ctx)
			}
			for _, p := range args {
				if err := c.submoduleRepo.UpdateSubmodule(ctx, domain.SubmoduleEntry{Path: p}); err != nil {
					return fmt.Errorf("update submodule %q: %w", p, err)
				}
			}
			return nil
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <path>...",
		Short: "Reset submodule paths to their recorded commits",
		Long: `Reset each path to the commit recorded in the superproject, one path at a
time and in the order given. The run stops at the first failure; paths
already reset stay reset. Progress is journaled, see "subsync journal".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			run, err := c.resetOrch.Execute(cmd.Context(), args)
			printRunSummary(cmd, run)
			return err
		},
	}
}

func newForceUpdateCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "force-update",
		Short: "Discard changes in conflicted submodules",
		Long: `Force-update every submodule with merge conflicts, discarding the local
changes in their working trees. This cannot be undone, so it asks for
confirmation unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			var confirmer orchestrator.Confirmer = newPromptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirmer = orchestrator.ConfirmFunc(alwaysConfirm)
			}
			run, err := c.forceUpdateOrch.Execute(cmd.Context(), confirmer)
			if errors.Is(err, orchestrator.ErrConfirmationRequired) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing was changed.")
			}
			if run == nil && err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No conflicted submodules")
			}
			printRunSummary(cmd, run)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Discard changes without asking")
	return cmd
}

func printRunSummary(cmd *cobra.Command, run *domain.RunState) {
	if run == nil {
		return
	}
	out := cmd.OutOrStdout()
	for _, s := range run.Steps {
		fmt.Fprintf(out, "%-9s %s\n", s.Status, s.Path)
	}
	if run.Status == domain.RunStatusFailed {
		if applied := run.CompletedPaths(); len(applied) > 0 {
			fmt.Fprintf(out, "Applied before the failure: %s\n", strings.Join(applied, ", "))
		}
	}
	fmt.Fprintf(out, "Run %s %s\n", run.SessionID, run.Status)
}
