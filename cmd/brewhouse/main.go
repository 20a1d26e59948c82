// Command brewhouse runs the coffee-ordering API and its maintenance tasks.
//
//	brewhouse serve              start HTTP (and gRPC when GRPC_PORT is set)
//	brewhouse migrate            apply pending migrations
//	brewhouse migrate:rollback   revert the last batch
//	brewhouse migrate:status     list migrations and their batch
//	brewhouse seed               create the admin account and sample catalog
//	brewhouse route:list         print the route table
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Migrations and seeders register themselves from init().
	_ "github.com/shashiranjanraj/brewhouse/database/migrations"
	_ "github.com/shashiranjanraj/brewhouse/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "brewhouse",
	Short:         "Coffee-ordering API server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}
