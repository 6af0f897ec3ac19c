package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newEndpointsCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "Print the Quaderno OAuth endpoints and default scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := cfg.provider(nil)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"authorization_url":   p.AuthorizationURL(),
				"token_url":           p.TokenURL(),
				"resource_owner_url":  p.ResourceOwnerDetailsURL(nil),
				"deauthorization_url": p.DeauthorizationURL(),
				"default_scopes":      p.DefaultScopes(),
			})
		},
	}
}
