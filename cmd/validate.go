package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bills/internal/billing"
	"bills/internal/config"
	"bills/internal/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate [data-file]",
	Short: "Check a tab-separated assessment ledger for structural problems",
	Long: `Validate the structure of a tab-separated assessment ledger without
producing any output files: exact header match, per-row column counts,
ISO-8601 appointment timestamps and literal true/false boolean columns.

Each violation is printed with its row number. The command exits non-zero
when the file does not conform, which makes it usable as a pre-flight check
in scripts before running "bills invoice".`,
	Example: `  # Validate the configured data file
  bills validate

  # Validate a specific export
  bills validate export.tsv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidateCmd,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("validate-cmd")

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		path = cfg.DataPath
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	defer src.Close()

	ok, reasons := billing.Validate(src)
	if !ok {
		for _, reason := range reasons {
			fmt.Printf("  %s\n", reason)
		}
		return fmt.Errorf("%s failed validation with %d problem(s)", path, len(reasons))
	}

	fmt.Printf("%s is valid\n", path)
	log.Info().Str("file", path).Msg("Data file validated")

	return nil
}
