package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"bills/internal/billing"
	"bills/internal/config"
	"bills/internal/holiday"
	"bills/internal/ledger"
	"bills/internal/logger"
	"bills/internal/render"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Generate period invoices from the assessment ledger",
	Long: `Read the tab-separated assessment ledger, classify each appointment into
assessments, reviews and cancellations, resolve fees from the cost
configuration and group the results into one invoice per billing period.

For every produced invoice the command renders an HTML invoice document and
an xlsx workbook into the output directory, and records each line item in the
running invoice ledger workbook.

The source is validated before anything is produced: a malformed ledger
aborts the run with the list of violations.

Input files default to the configured paths (DATA_PATH, COST_CONFIG_PATH,
HOLIDAYS_PATH) and can be overridden per run with flags.`,
	Example: `  # Invoice everything in the configured ledger
  bills invoice

  # Invoice a specific export with an explicit cost configuration
  bills invoice --data export.tsv --config costs.json

  # Only appointments between 0 and 2 calendar months from now
  bills invoice --min-months 0 --max-months 2`,
	Args: cobra.NoArgs,
	RunE: runInvoiceCmd,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)

	invoiceCmd.Flags().String("data", "", "Path to the tab-separated assessment ledger (default: DATA_PATH)")
	invoiceCmd.Flags().String("config", "", "Path to the JSON cost configuration (default: COST_CONFIG_PATH)")
	invoiceCmd.Flags().String("holidays", "", "Path to the JSON holidays file (default: HOLIDAYS_PATH)")
	invoiceCmd.Flags().Int("min-months", -1, "Minimum calendar-month distance from now (requires --max-months)")
	invoiceCmd.Flags().Int("max-months", -1, "Maximum calendar-month distance from now (requires --min-months)")
}

func runInvoiceCmd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dataPath, _ := cmd.Flags().GetString("data")
	configPath, _ := cmd.Flags().GetString("config")
	holidaysPath, _ := cmd.Flags().GetString("holidays")
	minMonths, _ := cmd.Flags().GetInt("min-months")
	maxMonths, _ := cmd.Flags().GetInt("max-months")

	if dataPath == "" {
		dataPath = cfg.DataPath
	}
	if configPath == "" {
		configPath = cfg.CostConfig
	}
	if holidaysPath == "" {
		holidaysPath = cfg.HolidaysFile
	}

	var monthRange *billing.MonthRange
	if minMonths >= 0 || maxMonths >= 0 {
		if minMonths < 0 || maxMonths < 0 {
			return fmt.Errorf("--min-months and --max-months must be given together")
		}
		monthRange = &billing.MonthRange{Min: minMonths, Max: maxMonths}
	}

	log.Info().
		Str("data", dataPath).
		Str("config", configPath).
		Str("holidays", holidaysPath).
		Msg("Starting invoice generation")

	// The data validation pass, the cost configuration and the holiday set
	// are independent reads, so load them concurrently.
	var (
		wg      sync.WaitGroup
		dataErr error

		costCfg *billing.CostConfig
		costErr error

		holidays holiday.Set
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		src, err := os.Open(dataPath)
		if err != nil {
			dataErr = fmt.Errorf("failed to open data file: %w", err)
			return
		}
		defer src.Close()
		if ok, reasons := billing.Validate(src); !ok {
			dataErr = fmt.Errorf("data file failed validation:\n  %s", strings.Join(reasons, "\n  "))
		}
	}()
	go func() {
		defer wg.Done()
		costCfg, costErr = billing.LoadCostConfig(configPath)
	}()
	go func() {
		defer wg.Done()
		var err error
		holidays, err = holiday.LoadFile(holidaysPath)
		if err != nil {
			log.Warn().Err(err).Msg("Holidays file unavailable, continuing with weekend rule only")
			holidays = holiday.NewSet(nil)
		}
	}()
	wg.Wait()
	if dataErr != nil {
		return dataErr
	}
	if costErr != nil {
		return costErr
	}

	invoices, err := billing.Run(billing.RunOptions{
		DataPath: dataPath,
		Config:   costCfg,
		Holidays: holidays,
		Range:    monthRange,
		Renderer: render.New(cfg.OutputDir),
		Ledger:   ledger.New(cfg.LedgerPath),
		Now:      time.Now(),
	})
	if err != nil {
		return err
	}

	for _, inv := range invoices {
		fmt.Printf("Invoice %d  %s  period %s  items %d  total £%.2f\n",
			inv.Number, inv.Ref, inv.Period, len(inv.Items()), inv.Total)
	}
	log.Info().Int("invoices", len(invoices)).Msg("Invoice generation complete")

	return nil
}
