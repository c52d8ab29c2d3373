package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/uniadmit/internal/admission"
	"github.com/jonathan/uniadmit/internal/config"
	"github.com/jonathan/uniadmit/internal/store"
)

// loadConfig resolves the config file and environment, then applies the
// --store and --dsn flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if storeDriver != "" {
		cfg.StoreDriver = storeDriver
	}
	if storeDSN != "" {
		cfg.StoreDSN = storeDSN
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openService opens the configured store and wraps it in an admission
// service. The caller closes the returned store.
func openService(ctx context.Context, cfg *config.Config) (*admission.Service, store.Store, error) {
	st, err := store.Open(ctx, cfg.StoreDriver, cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	if cfg.Verbose {
		log.Printf("[uniadmit] using %s store", cfg.StoreDriver)
	}
	return admission.New(st), st, nil
}
