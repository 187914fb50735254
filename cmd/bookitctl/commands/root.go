package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/config"
	"github.com/sujalbistaa/bookit/internal/db"
	"github.com/sujalbistaa/bookit/internal/logger"
)

var (
	databaseURL string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "bookitctl",
	Short: "Operator tooling for the Bookit API",
	Long: `bookitctl manages a Bookit database outside the API server.

It reads the same environment (and .env file) as the server. The
--database-url flag overrides DATABASE_URL.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (postgres://... or sqlite://...)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

// openDatabase connects using the configured DATABASE_URL unless the flag
// overrides it. The logger is silent unless --verbose is set.
func openDatabase() (*gorm.DB, *zap.Logger, error) {
	cfg, _, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	url := cfg.DatabaseURL
	if databaseURL != "" {
		url = databaseURL
	}

	log := zap.NewNop()
	if verbose {
		log = logger.New("debug", cfg.Env)
	}

	gdb, err := db.Open(url, db.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return gdb, log, nil
}

func closeDatabase(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}
