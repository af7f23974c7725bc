// Package cli provides the command-line interface for QueryDeck.
package cli

import (
	"fmt"
	"os"

	"github.com/querydeck/querydeck/internal/cli/commands"
	"github.com/querydeck/querydeck/internal/config"
	"github.com/spf13/cobra"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "querydeck",
		Short: "QueryDeck - Saved-query dashboard gateway",
		Long: `QueryDeck keeps analysts' saved-query dashboards responsive against an
unreliable network: it renders instantly from a local snapshot cache,
reconciles with the server in the background, coalesces edits into
debounced write-backs, and synthesizes comparable table and chart views
from partial data.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			cmd.SetContext(commands.WithConfig(cmd.Context(), cfg))
			if cfg.Verbose {
				if used := config.GetConfigFileUsed(); used != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
				}
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default querydeck.yaml)")
	flags.String("user", "", "user key to operate as")
	flags.String("backend-url", "", "remote persistence service URL")
	flags.String("cache-path", "", "local snapshot cache file (empty = memory only)")
	flags.Int("serve-port", 0, "gateway listen port")
	flags.BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		commands.NewServeCommand(),
		commands.NewPullCommand(),
		commands.NewStatsCommand(),
		commands.NewVersionCommand(Version, BuildDate, GitCommit),
	)
	return rootCmd
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
