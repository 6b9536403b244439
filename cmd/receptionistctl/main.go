package main

import (
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "receptionistctl",
		Short: "Operator tooling for the AI receptionist",
		Long: `Operator tooling for the AI receptionist service.

Examples:
  receptionistctl migrate --driver sqlite --dsn ./receptionist.db
  receptionistctl jobs --contractor c-1 --limit 10
  receptionistctl simulate --url http://localhost:8080/api/receptionist/inbound --to +15550001111 -n 20
  receptionistctl token --role contractor --contractor c-1`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("driver", envOr("DB_DRIVER", "postgres"), "store driver: postgres or sqlite")
	root.PersistentFlags().String("dsn", os.Getenv("RECEPTIONIST_DSN"), "database DSN (sqlite: file path)")
	root.PersistentFlags().Bool("json", false, "output JSON")

	root.AddCommand(migrateCmd())
	root.AddCommand(jobsCmd())
	root.AddCommand(simulateCmd())
	root.AddCommand(tokenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
