package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/studyrpg/internal/config"
	"github.com/vytor/studyrpg/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "studyrpg",
	Short:         "Gamified study server",
	Long:          "StudyRPG turns PDFs into quiz questions and rewards answering them with XP, quests and boss battles.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database path or DSN (overrides DB_PATH / DATABASE_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, applies flag overrides and validates
// the result. It also installs the default logger.
func loadConfig(cmd *cobra.Command) (config.Config, *logger.Logger, error) {
	cfg := config.Load()

	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		if cfg.DBDriver == "postgres" {
			cfg.DatabaseURL = dsn
		} else {
			cfg.DBPath = dsn
		}
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	format := logger.ParseFormat(cfg.LogFormat)
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithFormat(format),
		logger.WithColors(format == logger.FormatText),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		return cfg, log, err
	}
	return cfg, log, nil
}
