package cmd

import (
	"fmt"

	"github.com/compozy/subsync/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	var (
		dryRun bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull or fetch the current branch",
		Long: `Decide whether the current branch should be pulled or fetched and do it.
A branch that is behind its upstream is pulled; otherwise the remote is
fetched. Branches without a remote or upstream must be published first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			orch, err := c.newSyncOrchestrator()
			if err != nil {
				return err
			}
			result, err := orch.Execute(cmd.Context(), orchestrator.SyncConfig{DryRun: dryRun})
			if result != nil {
				if asJSON {
					if jsonErr := writeJSON(cmd.OutOrStdout(), result); jsonErr != nil {
						return jsonErr
					}
				} else {
					printSyncResult(cmd, result)
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print the decision")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the decision as JSON")
	return cmd
}

func printSyncResult(cmd *cobra.Command, result *orchestrator.SyncResult) {
	out := cmd.OutOrStdout()
	d := result.Decision
	fmt.Fprintf(out, "%s\n%s\n", d.Title, d.Description)
	switch {
	case result.Performed:
		fmt.Fprintf(out, "Done: %s\n", d.Action)
	case !d.Enabled:
		fmt.Fprintln(out, "Not available")
	}
}
