// Package main provides the qsim CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillpeak/qsim/pkg/config"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "qsim",
		Short: "qsim - embedding-backed question similarity retrieval engine",
		Long: `qsim builds a binary synonym index from a pretrained word-embedding
file, tokenizes free text against a curated keyword table and that index,
and scores questions against an inverted posting-list store expanded
through precomputed synonym neighborhoods.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qsim v%s\n", version)
		},
	})

	rootCmd.AddCommand(newBuildIndexCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newExplainCmd())
	rootCmd.AddCommand(newSynonymsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultsOrFatal loads environment defaults, exiting the process on a
// malformed override since every subcommand needs a valid configuration
// before it can do anything else.
func defaultsOrFatal() config.Config {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}
