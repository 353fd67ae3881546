// Command migrate applies or rolls back the embedded schema against the
// database selected by the same environment the API reads.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/geocoder89/eventreg/internal/config"
	"github.com/geocoder89/eventreg/internal/db"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

var (
	downSteps int
	downAll   bool

	rootCmd = &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the eventreg database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				if err := db.Up(m); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}

	downCmd = &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (one by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !downAll && downSteps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}

			return withMigrator(func(m *migrate.Migrate) error {
				if downAll {
					if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("migrate down: %w", err)
					}
				} else if err := db.Steps(m, -downSteps); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				return printVersion(cmd, m)
			})
		},
	}
)

func init() {
	downCmd.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")
	downCmd.Flags().BoolVar(&downAll, "all", false, "roll back every migration")

	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withMigrator builds the migrator for the configured driver and closes it
// (and its database handle) afterwards.
func withMigrator(fn func(m *migrate.Migrate) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var m *migrate.Migrate

	switch cfg.DBDriver {
	case config.DriverPostgres:
		m, err = db.NewPostgresMigrator(cfg.DBURL)
	case config.DriverSQLite:
		sqlDB, openErr := db.OpenSQLite(cfg.SQLitePath)
		if openErr != nil {
			return fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, openErr)
		}
		m, err = db.NewSQLiteMigrator(sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	default:
		return fmt.Errorf("driver %q has no schema to migrate", cfg.DBDriver)
	}

	if err != nil {
		return err
	}

	defer func() {
		_, _ = m.Close()
	}()

	return fn(m)
}

func printVersion(cmd *cobra.Command, m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		cmd.Println("no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	cmd.Printf("version %d (dirty=%t)\n", version, dirty)
	return nil
}
