// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pokerouter CLI. It serves the
// HTTP API and offers one-shot chat, battle, and dex commands.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pokerouter/internal/logging"
	"github.com/pdiddy/pokerouter/internal/secrets"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg and logger are built once in PersistentPreRunE and read by every
// subcommand.
var (
	cfg    types.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pokerouter",
	Short: "Route questions to direct answers, web search, or Pokemon lookup",
	Long: `pokerouter classifies a natural-language question and answers it
directly, through a web search, or by looking up and comparing up to two
Pokemon.

Run "pokerouter serve" for the HTTP API, or "pokerouter ask" for a
one-shot answer on stdout.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(os.Stderr, viper.GetString("log.level"))

		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		s.Apply(&c)
		cfg = c

		logger = logging.New(os.Stderr, cfg.Log.Level)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("config loaded", "file", used)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pokerouter.yaml or ~/.config/pokerouter/pokerouter.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pokerouter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pokerouter"))
		}
	}

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
