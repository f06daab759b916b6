package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"matserver/api"
	"matserver/config"
	"matserver/db"
	"matserver/gateway"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (default)",
		Long: `Serve the HTTP API.

On start the stored users are normalized once (missing collections are
added), then the server listens until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), cfg)
		},
	}
}

// openStore opens the configured repository and wraps it in a Store.
func openStore(cfg *config.Config) (*db.Store, error) {
	repo, err := db.OpenRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	return db.NewStore(repo, cfg), nil
}

// buildGateways wires the Azure collaborators. Without an ambient credential
// the store endpoints still work; the Azure ones report the problem per call.
func buildGateways(cfg *config.Config) api.Gateways {
	cred, err := gateway.NewCredential()
	if err != nil {
		log.Printf("WARN: Azure credential unavailable: %v", err)
	}
	return api.Gateways{
		Reports: gateway.NewReportTrigger(cfg),
		Jobs:    gateway.NewJobStatusClient(cfg, cred),
		Blobs:   gateway.NewBlobLinker(cfg, cred),
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		log.Printf("CRITICAL: %v", err)
		return err
	}
	defer func() {
		if err := store.Repository().Close(); err != nil {
			log.Printf("WARN: Error closing document store: %v", err)
		}
	}()

	// Normalize stored users before accepting requests.
	if _, err := store.Migrate(ctx); err != nil {
		log.Printf("CRITICAL: Startup migration failed: %v", err)
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(store, buildGateways(cfg))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.WithCORS(router, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// The webhook call may take up to its own timeout.
		WriteTimeout: cfg.WebhookTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("INFO: Starting server on %s", server.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Printf("CRITICAL: Server failed to start: %v", err)
		return err
	case <-ctx.Done():
		log.Printf("INFO: Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Printf("INFO: Server stopped cleanly")
	return nil
}
