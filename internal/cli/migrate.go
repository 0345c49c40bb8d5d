package cli

import (
	"github.com/spf13/cobra"

	"github.com/nurpe/ledger-service/internal/config"
	"github.com/nurpe/ledger-service/internal/db"
	"github.com/nurpe/ledger-service/internal/logger"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)

	// db.New migrates on open when asked to
	cfg.DB.AutoMigrate = true
	database, err := db.New(cfg, log)
	if err != nil {
		return err
	}
	return db.Close(database)
}
