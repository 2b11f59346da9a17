package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/logging"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	project    int
	verbose    bool
	dryRun     bool

	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "cardsync",
		Short: "Track card versions through playtesting and keep GitHub in sync",
		Long: `cardsync keeps the development state of a card game in a local card table
and reconciles it with GitHub: one issue per card version awaiting
implementation, one pull request per project listing the playtesting
changes, and one discussion thread per card.

Authentication:
  1. GitHub CLI: Run 'gh auth login' (preferred)
  2. Environment variable: Set GITHUB_TOKEN
  3. github.token in the config file

The token must have read/write access to issues, pull requests and discussions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The board has its own UI; logs would corrupt the screen
			if cmd.Name() == "browse" {
				return nil
			}
			logger, err := logging.New(opts.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "cardsync.yaml", "Path to the config file")
	flags.IntVarP(&opts.project, "project", "p", 0, "Project id. Defaults to every configured project.")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Log remote writes instead of performing them and save nothing")

	rootCmd.AddCommand(
		newInitCmd(opts),
		newSyncCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newImportCmd(opts),
		newBumpCmd(opts),
		newDestroyCmd(opts),
		newBrowseCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}
