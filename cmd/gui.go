package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bills/internal/config"
	"bills/internal/gui"
	"bills/internal/logger"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Serve the local management API",
	Long: `Start the local HTTP server backing the management GUI. The server
exposes a JSON API for editing the cost configuration, refreshing the
holidays file, generating invoices from posted ledger rows and applying
ledger updates, plus static serving of the rendered output files.

Endpoints:
  GET  /api/health            liveness check
  GET  /api/data/config       read the cost configuration
  POST /api/data/config       replace the cost configuration
  GET  /api/data/holidays     fetch and persist current+next year holidays
  POST /api/invoice/generate  run the pipeline over posted rows
  POST /api/invoice/update    apply a ledger update and rebuild the invoice
  GET  /data/*                rendered documents and workbooks`,
	Example: `  # Serve on the configured host and port (default localhost:3000)
  bills gui

  # Serve on a different port
  GUI_PORT=8080 bills gui`,
	Args: cobra.NoArgs,
	RunE: runGUICmd,
}

func init() {
	rootCmd.AddCommand(guiCmd)
}

func runGUICmd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("gui-cmd")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Info().
		Str("host", cfg.GUIHost).
		Str("port", cfg.GUIPort).
		Msg("Starting GUI server")

	return gui.New(cfg).Serve()
}
