package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/uniadmit/internal/admission"
	"github.com/jonathan/uniadmit/internal/catalog"
	"github.com/jonathan/uniadmit/internal/config"
	"github.com/jonathan/uniadmit/internal/server"
	"github.com/jonathan/uniadmit/internal/server/ratelimit"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the applicant portal and staff console endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}
	limitConfig, err := ratelimit.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load rate limit config: %w", err)
	}

	ctx := context.Background()
	svc, st, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := seedIfEmpty(ctx, svc); err != nil {
		return err
	}

	srv := server.New(server.Config{Port: cfg.Port, CORSOrigin: cfg.CORSOrigin},
		svc, server.NewJWTService(jwtConfig), ratelimit.NewLimiter(limitConfig))
	return srv.Start()
}

// seedIfEmpty loads the default catalogs into a fresh store so the server is
// usable on first start. A populated store is left as is.
func seedIfEmpty(ctx context.Context, svc *admission.Service) error {
	err := svc.Seed(ctx, catalog.Defaults(time.Now()), false)
	if err == nil {
		log.Println("[uniadmit] empty store seeded with default catalogs")
		return nil
	}
	if admission.IsAlreadySeeded(err) {
		return nil
	}
	return fmt.Errorf("failed to seed store: %w", err)
}
