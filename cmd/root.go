package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bills/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "bills",
	Short: "Bills CLI - assessment invoicing from appointment ledgers",
	Long: `Bills CLI turns a tab-separated ledger of assessment appointments into
per-period invoices: it classifies each appointment, resolves its fee from the
cost configuration, computes report submission dates around public holidays,
and renders invoice documents, workbooks and a running invoice ledger.

Configuration is read from the environment (optionally via a .env file); see
each subcommand's help for the files it consumes and produces.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Bills CLI executed")

		fmt.Println("Welcome to Bills CLI!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
