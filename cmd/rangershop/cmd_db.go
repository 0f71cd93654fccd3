package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rangershop/config"
	"github.com/shashiranjanraj/rangershop/database/seeders"
	"github.com/shashiranjanraj/rangershop/pkg/database"
	"github.com/shashiranjanraj/rangershop/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return database.Open(config.DatabaseDriver(), config.DatabaseDSN())
}

// rangershop migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		n, err := migration.New(db).Run()
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Nothing to migrate.")
		} else {
			fmt.Printf("Applied %d migration(s).\n", n)
		}
		return nil
	},
}

// rangershop migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		n, err := migration.New(db).Rollback()
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Nothing to roll back.")
		} else {
			fmt.Printf("Rolled back %d migration(s).\n", n)
		}
		return nil
	},
}

// rangershop migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		statuses, err := migration.New(db).Statuses()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MIGRATION\tSTATUS\tBATCH")
		for _, s := range statuses {
			if s.Ran {
				fmt.Fprintf(tw, "%s\tran\t%d\n", s.Name, s.Batch)
			} else {
				fmt.Fprintf(tw, "%s\tpending\t-\n", s.Name)
			}
		}
		return tw.Flush()
	},
}

// rangershop seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		return seeders.RunAll(db)
	},
}
