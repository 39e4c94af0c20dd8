package commands

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/local_store/internal/config"
	"github.com/Skotchmaster/local_store/pkg/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := applyFlags(config.FromEnv())
		log, ctx := newLogger(cfg)

		gdb, _, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		log.Info("schema is up to date")
		return nil
	},
}
