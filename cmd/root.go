package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/compozy/subsync/internal/service"
	"github.com/spf13/cobra"
)

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	repoPath   string
	configFile string
	logLevel   string
}

// app carries the global flags and the lazily built container.
type app struct {
	opts rootOptions
	c    *container
}

// container builds the dependencies on first use so flags are parsed first.
func (a *app) container() (*container, error) {
	if a.c != nil {
		return a.c, nil
	}
	c, err := newContainer(a.opts)
	if err != nil {
		return nil, err
	}
	a.c = c
	return c, nil
}

func (a *app) close() {
	if a.c != nil {
		_ = a.c.logger.Sync()
	}
}

// NewRootCmd creates the subsync command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "subsync",
		Short: "Inspect and update git submodules",
		Long: `subsync reads the state of a repository's submodules and runs the git
commands that initialize, update, reset and force-update them. It also
decides whether the current branch should be pulled or fetched.`,
		SilenceUsage: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.opts.repoPath, "repo", "", "Path to the repository (overrides repo_path)")
	flags.StringVar(&a.opts.configFile, "config", "", "Config file (default is ./.subsync.yaml)")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides log_level)")
	rootCmd.AddCommand(
		newListCmd(a),
		newInitCmd(a),
		newUpdateCmd(a),
		newResetCmd(a),
		newForceUpdateCmd(a),
		newSyncCmd(a),
		newJournalCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command, canceling in-flight git processes on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// ExitCode maps an error returned by Execute to a process exit status. A git
// failure exits with git's own code so scripts can tell them apart.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code := service.ExitCodeOf(err); code > 0 {
		return code
	}
	return 1
}
