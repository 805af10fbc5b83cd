package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/config"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	pkgconfig "github.com/Skotchmaster/sweet_shop/pkg/config"
	"github.com/Skotchmaster/sweet_shop/pkg/db"
)

func openDB(cmd *cobra.Command, cfg config.Config) (*gorm.DB, error) {
	if err := pkgconfig.Require(pkgconfig.NonEmpty(cfg.DatabaseURL, "DATABASE_URL")); err != nil {
		return nil, err
	}
	return db.Open(cmd.Context(), cfg.DBDriver, cfg.DatabaseURL)
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDB(cmd, a.cfg)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			if err := models.Migrate(gdb); err != nil {
				return err
			}
			color.Green("schema is up to date (%s)", a.cfg.DBDriver)
			return nil
		},
	}
}

func newReindexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the full-text search index from the database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.ESURL == "" {
				return fmt.Errorf("ES_URL is not set")
			}
			gdb, err := openDB(cmd, a.cfg)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			idx, err := openIndex(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			n, err := reindex(cmd.Context(), gdb, idx)
			if err != nil {
				return err
			}
			color.Green("indexed %d sweets into %s", n, a.cfg.ESIndex)
			return nil
		},
	}
}
