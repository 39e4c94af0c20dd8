package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_store/internal/config"
	"github.com/Skotchmaster/local_store/internal/repo"
	pkgcfg "github.com/Skotchmaster/local_store/pkg/config"
	"github.com/Skotchmaster/local_store/pkg/db"
	"github.com/Skotchmaster/local_store/pkg/logging"
)

var (
	dbURL    string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Local Store backend: catalog, cart, checkout and accounts",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database URL, overrides DATABASE_URL (\"sqlite:<path>\" for an embedded store)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error, overrides LOG_LEVEL")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// applyFlags lets command line flags win over the environment.
func applyFlags(cfg *config.Config) *config.Config {
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg
}

func newLogger(cfg *config.Config) (*slog.Logger, context.Context) {
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)
	return log, logging.IntoContext(context.Background(), log)
}

// openStore connects and brings the schema up to date.
func openStore(ctx context.Context, cfg *config.Config) (*gorm.DB, *repo.GormRepo, error) {
	pkgcfg.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db init: %w", err)
	}
	r := &repo.GormRepo{DB: gdb}
	if err := r.AutoMigrate(); err != nil {
		_ = db.Close(gdb)
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return gdb, r, nil
}
