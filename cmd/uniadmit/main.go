// Package main provides the uniadmit command: the admissions HTTP API server
// and its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	storeDriver string
	storeDSN    string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "uniadmit",
	Short: "University admission lifecycle server",
	Long: "uniadmit runs the admission lifecycle: applications, document review, fees, " +
		"the entrance exam, interview slots and final decisions, over a REST API.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Store driver: memory, sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&storeDSN, "dsn", "", "SQLite path or PostgreSQL URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print summaries of what was done")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
