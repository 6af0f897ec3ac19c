package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-training/quaderno-connect/pkg/oauthclient"
	"github.com/go-training/quaderno-connect/pkg/store"

	"github.com/appleboy/graceful"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the connect service and the MCP endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "address to listen on")
	cmd.Flags().DurationVar(&cfg.LoginStateTTL, "login-state-ttl", cfg.LoginStateTTL, "lifetime of a pending login")
	return cmd
}

func runServe(ctx context.Context, cfg *config) error {
	if err := cfg.validateClient(); err != nil {
		return err
	}

	storeConfig, err := cfg.storeConfig()
	if err != nil {
		return err
	}
	sessionStore, closeStore, err := store.NewStore(storeConfig)
	if err != nil {
		return fmt.Errorf("create %s store: %w", storeConfig.Type, err)
	}
	switch storeConfig.Type {
	case store.StoreTypeMemory:
		slog.Info("Using in-memory store")
	case store.StoreTypeRedis:
		slog.Info("Using Redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	}

	provider := cfg.provider(nil)
	a := &app{
		store: sessionStore,
		client: oauthclient.New(provider, oauthclient.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
		}),
		deauthorizer: provider,
		mcp:          NewMCPServer(sessionStore, provider).ServeHTTP(),
		stateTTL:     cfg.LoginStateTTL,
	}

	// Listen before handing over to the manager so bind errors surface at once.
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Addr)
	if err != nil {
		closeStore()
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	srv := &http.Server{
		Handler:      a.router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	m := graceful.NewManager()
	m.AddRunningJob(func(context.Context) error {
		slog.Info("Quaderno connect server listening", "addr", ln.Addr().String(), "base_uri", provider.BaseURI())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "err", err)
			return err
		}
		return nil
	})
	m.AddShutdownJob(func() error {
		slog.Info("Shutdown signal received, shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	})
	m.AddShutdownJob(func() error {
		closeStore()
		return nil
	})

	<-m.Done()
	slog.Info("Server shutdown gracefully")
	return nil
}
