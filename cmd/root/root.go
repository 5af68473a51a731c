// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerline/bankfeed/internal/config"
	"ledgerline/bankfeed/internal/container"
)

// Deps holds the wired application dependencies shared by all subcommands.
// It is populated by the root command's PersistentPreRunE before any
// subcommand runs.
var Deps *container.Container

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Output string
}

// SharedFlags holds common flag values accessible to all commands
var SharedFlags = CommonFlags{}

// Cmd is the root command
var Cmd = &cobra.Command{
	Use:   "bankfeed",
	Short: "A CLI tool to ingest bank CSV exports and categorize transactions.",
	Long: `bankfeed ingests CSV exports from any bank, detects their layout with a
single AI call per unseen header format, and categorizes every transaction
by merchant using stored mappings, patterns, fuzzy matching and batched AI.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to bankfeed!")
		fmt.Println("Use --help to see available commands")
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()

		cfg, err := config.InitializeConfig()
		if err != nil {
			return err
		}

		Deps, err = container.NewContainer(cmd.Context(), cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if Deps != nil {
			if err := Deps.Close(); err != nil {
				fmt.Printf("Warning: cleanup failed: %v\n", err)
			}
		}
	},
}

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
}
