// Package cli implements navctl, the command-line front end for the
// navigator daemon: it resolves the project the user is standing in,
// dials (or spawns) the per-project daemon, and renders its responses
// for a terminal.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootFlag string
	jsonFlag bool
)

// rootCmd is navctl's base command.
var rootCmd = &cobra.Command{
	Use:   "navctl",
	Short: "Navigate and patch a codebase through the navigator daemon",
	Long: `navctl talks to the per-project navigator daemon (navd), starting it
if it isn't already running, and exposes symbol search, hybrid
retrieval, and reindexing from the command line.`,
}

// Execute adds all child commands to the root command and runs it.
// It is called by main.main(); it only needs to happen once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "project root (defaults to the current directory's VCS toplevel)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output machine-readable JSON")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	viper.SetEnvPrefix("NAVCTL")
	viper.AutomaticEnv()
}
