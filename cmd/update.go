package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bills/internal/billing"
	"bills/internal/config"
	"bills/internal/ledger"
	"bills/internal/logger"
	"bills/internal/render"
	"bills/pkg/models"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update one ledger cell and re-render the affected invoice",
	Long: `Apply a single cell update to the invoice ledger workbook: the row is
addressed by its CRN, the sheet by invoice reference and the cell by column
header. The change is written to both the ALL sheet and the reference sheet.

After a successful update the reference's invoice is rebuilt from the ledger
rows not marked excluded and its document and workbook are re-rendered.
Setting the Excluded column to "yes" removes an item from the rebuilt
invoice without deleting its row.

The payload can be given via flags or as a JSON file of the shape
{"id": "...", "ref": "...", "key": "...", "value": "..."}.`,
	Example: `  # Exclude one item from its invoice
  bills update --id CRN-12345 --ref AD-Mar25 --key Excluded --value yes

  # Fix a customer name
  bills update --id CRN-12345 --ref AD-Mar25 --key Customer --value "J. Smith"

  # Apply a payload file
  bills update --payload update.json`,
	Args: cobra.NoArgs,
	RunE: runUpdateCmd,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().String("id", "", "CRN addressing the row")
	updateCmd.Flags().String("ref", "", "Invoice reference addressing the sheet")
	updateCmd.Flags().String("key", "", "Column header addressing the cell")
	updateCmd.Flags().String("value", "", "Value to write")
	updateCmd.Flags().String("payload", "", "Path to a JSON update payload (overrides the other flags)")
}

func runUpdateCmd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("update")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	payload, err := updatePayloadFromFlags(cmd)
	if err != nil {
		return err
	}

	book := ledger.New(cfg.LedgerPath)
	applied, err := book.ApplyUpdate(payload)
	if err != nil {
		return err
	}
	if !applied {
		fmt.Println("No matching cell found; nothing updated.")
		return nil
	}

	costCfg, err := billing.LoadCostConfig(cfg.CostConfig)
	if err != nil {
		return err
	}

	inv, err := book.Rebuild(payload.Ref, costCfg)
	if err != nil {
		return err
	}
	if inv == nil {
		fmt.Println("Update applied; no invoice sheet to rebuild.")
		return nil
	}

	renderer := render.New(cfg.OutputDir)
	if err := renderer.Document(*inv); err != nil {
		log.Error().Err(err).Str("ref", inv.Ref).Msg("Invoice document re-render failed")
	}
	if err := renderer.Workbook(*inv); err != nil {
		log.Error().Err(err).Str("ref", inv.Ref).Msg("Invoice workbook re-render failed")
	}

	fmt.Printf("Updated %s and rebuilt invoice %s (items %d, total £%.2f)\n",
		payload.Key, inv.Ref, len(inv.Items()), inv.Total)

	return nil
}

func updatePayloadFromFlags(cmd *cobra.Command) (models.UpdatePayload, error) {
	payloadPath, _ := cmd.Flags().GetString("payload")
	if payloadPath != "" {
		raw, err := os.ReadFile(payloadPath)
		if err != nil {
			return models.UpdatePayload{}, fmt.Errorf("failed to read payload file: %w", err)
		}
		var payload models.UpdatePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return models.UpdatePayload{}, fmt.Errorf("failed to parse payload file %s: %w", payloadPath, err)
		}
		return payload, nil
	}

	id, _ := cmd.Flags().GetString("id")
	ref, _ := cmd.Flags().GetString("ref")
	key, _ := cmd.Flags().GetString("key")
	value, _ := cmd.Flags().GetString("value")

	if id == "" || ref == "" || key == "" {
		return models.UpdatePayload{}, fmt.Errorf("--id, --ref and --key are required (or use --payload)")
	}

	return models.UpdatePayload{ID: id, Ref: ref, Key: key, Value: value}, nil
}
