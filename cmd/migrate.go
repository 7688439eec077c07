package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/logger"
)

var withSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.Init(cfg.Log.Level, cfg.Log.Env)
		defer func() { _ = log.Sync() }()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("schema migrated", zap.String("db", cfg.Database.Driver))

		year := time.Now().UTC().Year()
		if _, err := database.EnsurePeriods(db, year); err != nil {
			return err
		}
		log.Info("evaluation periods ready", zap.Int("year", year))

		if !withSeed {
			return nil
		}
		if err := database.Seed(db); err != nil {
			return err
		}
		log.Info("catalogs seeded")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&withSeed, "seed", false, "also load the default catalogs")
	rootCmd.AddCommand(migrateCmd)
}
