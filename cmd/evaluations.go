package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/logger"
	"supplier-compliance-backend/services"
)

var periodYear int

var evaluationsCmd = &cobra.Command{
	Use:   "evaluations",
	Short: "Maintain the supplier evaluation calendar",
}

var evaluationPeriodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "Create the three four-month periods of a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *gorm.DB, svc *services.Services) error {
			year := periodYear
			if year == 0 {
				year = time.Now().UTC().Year()
			}
			periods, err := svc.Evaluations.OpenYear(db, year)
			if err != nil {
				return err
			}
			logger.FromContext(ctx).Info("evaluation periods ready", zap.Int("year", year), zap.Int("periods", len(periods)))
			return nil
		})
	},
}

var evaluationSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Re-derive every supplier's situation against the closed evaluation periods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *gorm.DB, svc *services.Services) error {
			n, err := svc.Evaluations.Sweep(ctx, db)
			if err != nil {
				return err
			}
			logger.FromContext(ctx).Info("evaluation sweep done", zap.Int("suppliers", n))
			return nil
		})
	},
}

// withDB runs fn in one transaction against the configured database.
func withDB(fn func(ctx context.Context, db *gorm.DB, svc *services.Services) error) error {
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
	svc := services.New(cfg.Compliance.MatrixRule, nil)
	ctx := logger.WithContext(context.Background(), log)
	return database.Transaction(ctx, db, func(ctx context.Context, tx *gorm.DB) error {
		return fn(ctx, tx, svc)
	})
}

func init() {
	evaluationPeriodsCmd.Flags().IntVar(&periodYear, "year", 0, "calendar year (default: current year)")
	evaluationsCmd.AddCommand(evaluationPeriodsCmd, evaluationSweepCmd)
	rootCmd.AddCommand(evaluationsCmd)
}
