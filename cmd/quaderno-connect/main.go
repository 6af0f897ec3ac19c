// Command quaderno-connect connects Quaderno accounts through OAuth 2.0 and
// exposes them to MCP clients.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-training/quaderno-connect/pkg/logger"

	"github.com/spf13/cobra"
)

func newRootCmd(cfg *config) *cobra.Command {
	root := &cobra.Command{
		Use:   "quaderno-connect",
		Short: "Connect Quaderno accounts over OAuth 2.0",
		Long: `quaderno-connect runs the OAuth 2.0 authorization-code flow against
Quaderno, keeps the resulting sessions, and serves the connected accounts
to MCP clients.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.NewWithLevel(cfg.LogLevel)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.BaseURI, "base-uri", cfg.BaseURI, "Quaderno base URI")
	flags.StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "OAuth 2.0 Client ID")
	flags.StringVar(&cfg.ClientSecret, "client-secret", cfg.ClientSecret, "OAuth 2.0 Client Secret")
	flags.StringVar(&cfg.RedirectURI, "redirect-uri", cfg.RedirectURI, "OAuth 2.0 redirect URI registered with Quaderno")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel,
		"Log level (DEBUG, INFO, WARN, ERROR). Defaults to DEBUG in development, INFO in production")
	flags.StringVar(&cfg.Store, "store", cfg.Store, "Store type: memory or redis")
	flags.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address (only used when store=redis)")
	flags.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password (only used when store=redis)")
	flags.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database (only used when store=redis)")

	root.AddCommand(
		newServeCmd(cfg),
		newStdioCmd(cfg),
		newDeauthorizeCmd(cfg),
		newEndpointsCmd(cfg),
	)
	return root
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := newRootCmd(cfg).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
