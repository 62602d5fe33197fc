package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/orchestrator"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newJournalCmd(a *app) *cobra.Command {
	var (
		sessionID string
		deleteID  string
		asJSON    bool
		list      bool
		prune     bool
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the journal of a reset or force-update run",
		Long: `Show which paths a reset or force-update run applied before it finished
or failed. Without --session the most recent run is shown.

--list prints every recorded run, --delete removes one journal and --prune
removes the journals of all completed runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			switch {
			case list:
				runs, err := c.stateRepo.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list runs: %w", err)
				}
				if asJSON {
					return writeJSON(out, runs)
				}
				return writeRuns(out, runs)
			case deleteID != "":
				if err := c.stateRepo.Delete(ctx, deleteID); err != nil {
					return fmt.Errorf("failed to delete run %s: %w", deleteID, err)
				}
				fmt.Fprintf(out, "Deleted run %s\n", deleteID)
				return nil
			case prune:
				pruned, err := orchestrator.PruneRuns(ctx, c.stateRepo)
				fmt.Fprintf(out, "Pruned %d completed run(s)\n", len(pruned))
				return err
			}
			run, err := orchestrator.LoadRun(ctx, c.stateRepo, sessionID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, run)
			}
			writeRun(out, run)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID of the run (default is the latest)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the journal as JSON")
	cmd.Flags().BoolVar(&list, "list", false, "List every recorded run")
	cmd.Flags().StringVar(&deleteID, "delete", "", "Delete the journal of the given session")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete the journals of completed runs")
	cmd.MarkFlagsMutuallyExclusive("session", "list", "delete", "prune")
	return cmd
}

func writeRun(out io.Writer, run *domain.RunState) {
	fmt.Fprintf(out, "Session:\t%s\n", run.SessionID)
	fmt.Fprintf(out, "Kind:\t%s\n", run.Kind)
	fmt.Fprintf(out, "Status:\t%s\n", run.Status)
	fmt.Fprintf(out, "Started:\t%s\n", humanize.Time(run.StartedAt))
	if run.Error != "" {
		fmt.Fprintf(out, "Error:\t%s\n", run.Error)
	}
	for _, s := range run.Steps {
		line := fmt.Sprintf("  %-9s %s", s.Status, s.Path)
		if s.StartedAt != nil && s.CompletedAt != nil {
			line += fmt.Sprintf(" (%s)", s.CompletedAt.Sub(*s.StartedAt).Round(time.Millisecond))
		}
		if s.Error != "" {
			line += ": " + s.Error
		}
		fmt.Fprintln(out, line)
	}
}

func writeRuns(out io.Writer, runs []*domain.RunState) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No runs")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tKIND\tSTATUS\tAPPLIED\tUPDATED")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n",
			run.SessionID, run.Kind, run.Status,
			len(run.CompletedPaths()), len(run.Steps), humanize.Time(run.UpdatedAt))
	}
	return tw.Flush()
}
