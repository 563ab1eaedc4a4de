// Command hivectl is a read-only inspection CLI for a running hive
// deployment. It does not replace the library embedding surface (spec.md §6
// states the CLI/embedding surface is "none normative"); it bootstraps a
// Hive the same way an embedding application would and prints what it
// finds.
//
// Grounded on steveyegge-beads/cmd/bd-examples's cobra root command (a
// single persistent --config flag, subcommands doing one read and one
// print each) and evalgo-org-eve/cli/root.go's viper-backed config loading.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dreamware/hivedir/internal/config"
	"github.com/dreamware/hivedir/internal/connsource"
	"github.com/dreamware/hivedir/internal/hive"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "hivectl",
	Short:         "Inspect a hive deployment",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to hive config file")
	rootCmd.AddCommand(statusCmd, dimensionsCmd, nodesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hivectl:", err)
		os.Exit(1)
	}
}

// loadHive is the shared bootstrap every subcommand uses: read config, open
// the connection source, Load the hive. Subcommands never mutate state.
func loadHive() (*hive.Hive, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cfg.HiveURI == "" {
		return nil, fmt.Errorf("hivectl: no hive_uri configured (use --config or HIVE_HIVE_URI)")
	}
	conns := connsource.New()
	return hive.Load(rootCmd.Context(), cfg.HiveURI, conns)
}
