package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bills/internal/config"
	"bills/internal/holiday"
	"bills/internal/logger"
)

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Fetch public holidays and persist them for completion-date math",
	Long: `Fetch the public holidays for the current and the next calendar year from
the Nager.Date API, filtered to nationwide holidays plus those scoped to the
configured region, and write them to the configured holidays file.

The invoice pipeline uses this file to skip holidays when computing report
submission dates. A failed fetch for a year degrades to no holidays for that
year; submission dates then fall back to the weekend rule alone.`,
	Example: `  # Refresh the configured holidays file
  bills holidays

  # Fetch a specific pair of years
  bills holidays --year 2026`,
	Args: cobra.NoArgs,
	RunE: runHolidaysCmd,
}

func init() {
	rootCmd.AddCommand(holidaysCmd)

	holidaysCmd.Flags().Int("year", 0, "First year to fetch (default: current year); the following year is always included")
	holidaysCmd.Flags().String("output", "", "Output file path (default: HOLIDAYS_PATH)")
}

func runHolidaysCmd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("holidays")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	year, _ := cmd.Flags().GetInt("year")
	output, _ := cmd.Flags().GetString("output")

	if year == 0 {
		year = time.Now().Year()
	}
	if output == "" {
		output = cfg.HolidaysFile
	}

	log.Info().
		Int("year", year).
		Str("country", cfg.HolidayCountry).
		Str("region", cfg.HolidayRegion).
		Msg("Fetching public holidays")

	provider := holiday.NewProvider(cfg.HolidayAPIURL, cfg.HolidayCountry, cfg.HolidayRegion)
	set := provider.FetchYears(context.Background(), year, year+1)

	dates := set.Dates()
	if err := holiday.WriteFile(output, dates); err != nil {
		return err
	}

	fmt.Printf("Wrote %d holiday dates to %s\n", len(dates), output)
	log.Info().Int("holidays", len(dates)).Str("file", output).Msg("Holidays file updated")

	return nil
}
