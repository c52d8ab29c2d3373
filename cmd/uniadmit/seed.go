package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/uniadmit/internal/catalog"
	"github.com/jonathan/uniadmit/internal/observability"
	"github.com/jonathan/uniadmit/internal/schemas"
)

var (
	seedFile  string
	seedForce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load catalogs, slots and staff into the store",
	Long: `Seed writes the admin catalogs, exam corpus, interview slots, staff directory and
announcements into the store. Without --file the built-in defaults are used. Collections that
already hold data are left alone unless --force is given.`,
	RunE: runSeed,
}

var validateSeedCmd = &cobra.Command{
	Use:   "validate-seed <file>",
	Short: "Validate a seed file against the seed schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := schemas.ValidateSeedFile(args[0]); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Validation failed")
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "Seed JSON file (default: built-in catalogs)")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Overwrite collections that already hold data")
	rootCmd.AddCommand(seedCmd, validateSeedCmd)
}

// readSeed validates and decodes a seed file.
func readSeed(path string) (catalog.Seed, error) {
	if err := schemas.ValidateSeedFile(path); err != nil {
		return catalog.Seed{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Seed{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed catalog.Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return catalog.Seed{}, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return seed, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := seedFile
	if path == "" {
		path = cfg.SeedFile
	}
	seed := catalog.Defaults(time.Now())
	if path != "" {
		if seed, err = readSeed(path); err != nil {
			return err
		}
	}

	ctx := context.Background()
	svc, st, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := svc.Seed(ctx, seed, seedForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s store\n", cfg.StoreDriver)
	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintSeed(seed)
	}
	return nil
}
