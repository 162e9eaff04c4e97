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
	Use:   "warden",
	Short: "Warden - attribute-based access control decision engine",
	Long: `Warden evaluates access inquiries against a set of stored policies
and answers allow or deny.

Policies describe who (subjects) may do what (actions) to what (resources)
under which circumstances (context). They can be expressed as string
patterns with regex holes or as structured rule trees. A single matching
deny policy overrides any number of allows, and no matching allow means
the inquiry is denied.`,
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
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
