// Command stockroom serves the inventory and order API and runs the
// operational tasks around it:
//
//	stockroom serve              # HTTP + gRPC
//	stockroom route:list
//	stockroom migrate
//	stockroom migrate:rollback
//	stockroom migrate:status
//	stockroom seed
//	stockroom report:orders --date 2026-01-31
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import migrations so their init() funcs run and register themselves.
	_ "github.com/shashiranjanraj/stockroom/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "stockroom",
	Short:         "Inventory, order fulfillment and reporting service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Operations
	rootCmd.AddCommand(reportOrdersCmd)
	rootCmd.AddCommand(userCreateCmd)
}
