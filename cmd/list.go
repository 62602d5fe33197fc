package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/usecase"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		activeOnly bool
		asJSON     bool
		sortBy     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the submodules of the repository",
		Long: `List every top-level submodule with its state, path, recorded commit and
git describe output. With --active only submodules git could describe are
shown, which are the ones that are initialized and checked out. The
VERSION column is the describe output read as a semantic version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			if sortBy != "path" && sortBy != "version" {
				return fmt.Errorf("invalid --sort %q: expected path or version", sortBy)
			}
			uc := &usecase.ListSubmodulesUseCase{
				SubmoduleRepo: c.submoduleRepo,
				ActiveOnly:    activeOnly,
				SortByVersion: sortBy == "version",
			}
			entries, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entryViews(entries))
			}
			return writeEntries(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only list submodules with describe output")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the submodules as JSON")
	cmd.Flags().StringVar(&sortBy, "sort", "path", "Order by path (listing order) or version")
	return cmd
}

// entryView is a listed submodule with its parsed version.
type entryView struct {
	domain.SubmoduleEntry
	SemVer string `json:"version,omitempty"`
}

func entryViews(entries []domain.SubmoduleEntry) []entryView {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		view := entryView{SubmoduleEntry: e}
		if v, err := e.Version(); err == nil {
			view.SemVer = v.String()
		}
		views = append(views, view)
	}
	return views
}

func writeEntries(out io.Writer, entries []domain.SubmoduleEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No submodules")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tPATH\tVERSION\tDESCRIBE\tSHA")
	for _, e := range entryViews(entries) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.StateName(), e.Path, orDash(e.SemVer), orDash(e.Describe), e.SHA)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
