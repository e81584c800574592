package main

import (
	"fmt"

	"yorkie-bakery-be/internal/bootstrap"
	"yorkie-bakery-be/internal/config"
	"yorkie-bakery-be/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "bakeryctl",
	Short:         "Maintenance commands for the bakery recommendation backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd, reindexCmd, purgeSessionsCmd, seedCmd)
}

// openContainer loads configuration and wires the same components the
// REST server uses.
func openContainer() (*bootstrap.Container, *config.Config, error) {
	cfg := config.Load()

	var db *gorm.DB
	if bootstrap.NeedsDatabase(cfg) {
		var err error
		db, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
	}

	c, err := bootstrap.NewContainer(db, cfg)
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}
