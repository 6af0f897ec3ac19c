package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-training/quaderno-connect/pkg/logger"
	"github.com/go-training/quaderno-connect/pkg/store"

	"github.com/spf13/cobra"
)

func newStdioCmd(cfg *config) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Serve the MCP tools over stdio for an existing session",
		Long: `stdio serves the MCP account tools over standard input and output on
behalf of one session created by "serve". Sessions must be shared through
the Redis store.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			// stdout carries the protocol.
			logger.NewWithWriter(os.Stderr, cfg.LogLevel)

			if sessionID == "" {
				return errors.New("--session is required")
			}
			if err := cfg.validateClient(); err != nil {
				return err
			}
			storeConfig, err := cfg.storeConfig()
			if err != nil {
				return err
			}
			if storeConfig.Type != store.StoreTypeRedis {
				return fmt.Errorf("stdio needs sessions shared with serve: use --store=redis, not %q", storeConfig.Type)
			}
			sessionStore, closeStore, err := store.NewStore(storeConfig)
			if err != nil {
				return fmt.Errorf("create %s store: %w", storeConfig.Type, err)
			}
			defer closeStore()

			return NewMCPServer(sessionStore, cfg.provider(nil)).ServeStdio(sessionID)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", os.Getenv("QUADERNO_SESSION_ID"), "session ID returned by /callback")
	return cmd
}
