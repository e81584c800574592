package main

import (
	"errors"
	"fmt"
	"os"

	"yorkie-bakery-be/internal/config"
	"yorkie-bakery-be/internal/model"
	"yorkie-bakery-be/pkg/database"

	"github.com/spf13/cobra"
)

var (
	seedFile  string
	seedIndex bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the vector extension and migrate all tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.Database.Connection == "" {
			return errors.New("DB_CONNECTION_STRING is not set")
		}
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}

		for _, sql := range []string{
			`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
			`CREATE EXTENSION IF NOT EXISTS vector;`,
		} {
			if err := db.Exec(sql).Error; err != nil {
				return fmt.Errorf("setup %q: %w", sql, err)
			}
		}

		if err := db.AutoMigrate(
			&model.ChatSession{},
			&model.MenuItem{},
			&model.CatalogEmbedding{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Re-embed every available menu item into the vector store",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := openContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		res, err := c.CatalogIndexService.IndexAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d, skipped %d\n", res.Indexed, res.Skipped)
		return nil
	},
}

var purgeSessionsCmd = &cobra.Command{
	Use:   "purge-sessions",
	Short: "Delete chat sessions past their expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := openContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.SessionPurgeService.PurgeOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d sessions\n", n)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert menu items from a YAML catalog file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return err
		}
		defer f.Close()

		c, _, err := openContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		items, err := c.CatalogSeedService.Parse(f)
		if err != nil {
			return err
		}
		if err := c.CatalogSeedService.Seed(cmd.Context(), items); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d menu items\n", len(items))

		if !seedIndex {
			return nil
		}
		res, err := c.CatalogIndexService.IndexAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d, skipped %d\n", res.Indexed, res.Skipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "path to the catalog YAML file")
	_ = seedCmd.MarkFlagRequired("file")
	seedCmd.Flags().BoolVar(&seedIndex, "index", true, "re-index the catalog after seeding")
}
