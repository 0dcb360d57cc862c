package cmd

import (
	"stockmcp/internal/stockdb"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with sample records",
	Long: `Populate an empty store with the well-known sample records
(AAPL, GOOGL, MSFT, TSLA, NVDA). A store that already holds records is
left untouched.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := stockdb.New(cfg.DataFile, cfg.CorruptionPolicy, appLogger)
	if err != nil {
		return err
	}

	created, err := stockdb.SeedSampleData(db)
	if err != nil {
		return err
	}

	if created == 0 {
		appLogger.Info("Store already has records, nothing seeded", "data_file", db.Path())
	} else {
		appLogger.Info("Seeded sample data", "records", created, "data_file", db.Path())
	}
	return nil
}
