package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/storefront/internal/config"
	"github.com/aretw0/storefront/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront is an embeddable beauty catalog view",
	Long: `Storefront renders a static product catalog inside a host application and
follows the host's theme, style variables, fonts and safe-area insets.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to storefront.yaml (defaults when empty)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if _, err := logging.ParseLevel(level); err != nil {
			return config.Config{}, nil, err
		}
		cfg.Log.Level = level
	}
	if cmd.Flags().Changed("host") {
		cfg.Host.Transport, _ = cmd.Flags().GetString("host")
		if err := cfg.Validate(); err != nil {
			return config.Config{}, nil, err
		}
	}
	return cfg, cfg.Logger(), nil
}
