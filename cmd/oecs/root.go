package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "oecs",
	Short: "Risk budget and mode governance engine for model conversations",
	Long: `Oecs governs an unfiltered model conversation through explicit,
pre-agreed structure instead of content filtering.

A session starts in one of four epistemic modes, each with an
informed-consent contract, a base risk cost, and an escalation factor.
Every exchange draws down a finite risk budget; when the budget cannot
cover an exchange the engine warns or denies on arithmetic alone,
never on content. Every decision lands in a gapless, exportable audit
trail.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "oecs.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
