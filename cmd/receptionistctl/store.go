package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ai-receptionist/internal/audit"
	"ai-receptionist/internal/jobs"
	"ai-receptionist/pkg/utils"
)

// openStore resolves --driver/--dsn into an open database.
func openStore(ctx context.Context, cmd *cobra.Command) (*sql.DB, string, error) {
	driver, _ := cmd.Flags().GetString("driver")
	dsn, _ := cmd.Flags().GetString("dsn")

	switch driver {
	case "sqlite":
		driver = utils.DriverSQLite
		if dsn == "" {
			dsn = envOr("SQLITE_PATH", "receptionist.db")
		}
	case "postgres", "":
		driver = utils.DriverPostgres
		if dsn == "" {
			return nil, "", fmt.Errorf("--dsn (or RECEPTIONIST_DSN) is required for postgres")
		}
	default:
		return nil, "", fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := utils.OpenDatabase(ctx, driver, dsn, utils.PoolConfig{})
	if err != nil {
		return nil, "", err
	}
	return db, driver, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the job and audit schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, driver, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := jobs.NewSQLStore(db, driver).Migrate(ctx); err != nil {
				return err
			}
			if err := audit.NewSQLRepo(db, driver).Migrate(ctx); err != nil {
				return fmt.Errorf("audit migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
