package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"supplier-compliance-backend/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "supplier-compliance",
	Short: "Supplier onboarding and compliance API",
	Long: `Registers suppliers, tracks their registration situation, validates their
responsibility matrix and runs the approval chain.`,
	RunE: runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .env and environment only)")
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}
