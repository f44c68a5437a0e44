package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/api"
	"github.com/Tiliavir/arbeitszeit/internal/auth"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	gate := auth.Gate{Name: cfg.AdminName, Hash: cfg.AdminPINHash}
	if gate.Open() {
		log.Printf("Warning: no admin_pin_hash configured, /api/admin is unprotected")
	}
	handler := &api.Handler{
		Store:        store,
		Company:      cfg.Company,
		Region:       cfg.Region,
		WeeklyHours:  cfg.DefaultWeeklyHours,
		AdminName:    cfg.AdminName,
		DefaultStart: cfg.DefaultStart,
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler, gate, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("azt API listening on %s (storage: %s, region: %s)", addr, cfg.Storage.Driver, cfg.Region)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return usageError(fmt.Errorf("server failed: %w", err))
	case <-quit:
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
