package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/local_store/internal/config"
	"github.com/Skotchmaster/local_store/internal/seed"
	"github.com/Skotchmaster/local_store/pkg/db"
)

var (
	adminEmail    string
	adminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog and an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := applyFlags(config.FromEnv())
		log, ctx := newLogger(cfg)

		gdb, _, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if adminEmail == "" {
			adminEmail = os.Getenv("ADMIN_EMAIL")
		}
		if adminPassword == "" {
			adminPassword = os.Getenv("ADMIN_PASSWORD")
		}
		res, err := seed.Run(ctx, gdb, seed.Options{
			DSN:           cfg.DatabaseURL,
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
			BcryptCost:    cfg.BcryptCost,
		})
		if err != nil {
			return err
		}

		log.Info("seed complete", "products", res.Products, "images", res.Images, "admin_created", res.AdminCreated)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&adminEmail, "admin-email", "", "email of the admin account to create, defaults to ADMIN_EMAIL")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "", "admin password, defaults to ADMIN_PASSWORD")
}
