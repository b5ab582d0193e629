package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import seeders so their init() funcs run and register themselves.
	_ "github.com/cpbyrne/ostaa/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ostaa",
	Short: "Ostaa — marketplace API CLI",
	Long:  "Ostaa is a peer-to-peer marketplace backend. Use this CLI to run the server, inspect routes and seed the database.",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(seedCmd)
}
