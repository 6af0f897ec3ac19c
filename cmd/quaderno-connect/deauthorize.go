package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-training/quaderno-connect/pkg/quaderno"

	"github.com/spf13/cobra"
)

func newDeauthorizeCmd(cfg *config) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "deauthorize",
		Short: "Revoke a Quaderno access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			if err := cfg.validateClient(); err != nil {
				return err
			}

			resp, err := cfg.provider(nil).Deauthorize(cmd.Context(), token)
			if err != nil {
				if ipErr, ok := quaderno.AsIdentityProviderError(err); ok {
					return fmt.Errorf("quaderno rejected deauthorization (status %d): %s", ipErr.StatusCode, ipErr.Message)
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "access token to revoke")
	return cmd
}
