package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "careersync",
	Short: "Local skill matching and career recommendation engine",
	Long: `careersync extracts skills from resumes, matches them against an
occupation catalog and recommends courses for the gaps. The server
exposes an HTTP API and an MCP surface over the same engine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(gapCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
