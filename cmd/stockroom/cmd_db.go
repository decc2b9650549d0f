package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/stockroom/config"
	"github.com/shashiranjanraj/stockroom/database/seeders"
	"github.com/shashiranjanraj/stockroom/pkg/database"
	"github.com/shashiranjanraj/stockroom/pkg/migration"
)

// withDB loads config, opens the database for the duration of fn and
// closes it afterwards.
func withDB(fn func(db *gorm.DB) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	db, err := database.Open(database.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck
	return fn(db)
}

// stockroom migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			ran, err := migration.New(db).Run()
			for _, name := range ran {
				fmt.Printf("  ✅ Migrated:  %s\n", name)
			}
			if err == nil && len(ran) == 0 {
				fmt.Println("Nothing to migrate.")
			}
			return err
		})
	},
}

// stockroom migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			reverted, err := migration.New(db).Rollback()
			for _, name := range reverted {
				fmt.Printf("  ◀ Rolled back:  %s\n", name)
			}
			if err == nil && len(reverted) == 0 {
				fmt.Println("Nothing to roll back.")
			}
			return err
		})
	},
}

// stockroom migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			rows, err := migration.New(db).Status()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "MIGRATION\tSTATUS\tBATCH")
			for _, row := range rows {
				if row.Ran {
					fmt.Fprintf(w, "%s\tRan\t%d\n", row.Name, row.Batch)
				} else {
					fmt.Fprintf(w, "%s\tPending\t-\n", row.Name)
				}
			}
			return w.Flush()
		})
	},
}

// stockroom seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			ran, err := seeders.RunAll(cmd.Context(), db)
			for _, name := range ran {
				fmt.Printf("  • Seeded: %s\n", name)
			}
			return err
		})
	},
}
