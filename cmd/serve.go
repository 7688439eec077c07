package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/logger"
	"supplier-compliance-backend/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Init(cfg.Log.Level, cfg.Log.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return err
	}
	if err := database.Migrate(db); err != nil {
		log.Error("failed to migrate database", zap.Error(err))
		return err
	}
	if err := database.Seed(db); err != nil {
		log.Error("failed to seed catalogs", zap.Error(err))
		return err
	}

	app := server.New(cfg, db, log)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	log.Info("API server starting", zap.String("port", cfg.Server.Port), zap.String("db", cfg.Database.Driver))
	return app.Listen(":" + cfg.Server.Port)
}
