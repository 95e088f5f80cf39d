package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	authsvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/auth"
)

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for calling the API as a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseUserFlag("user", user)
			if err != nil {
				return err
			}

			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			resp, err := mintToken(authsvc.NewJWTManager(cfg.Auth.JWTSecret, ttl), userID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id the token authenticates")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func mintToken(tokens *authsvc.JWTManager, userID uuid.UUID) (tokenResponse, error) {
	signed, expiresAt, err := tokens.GenerateAccessToken(userID)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("generate token: %w", err)
	}
	return tokenResponse{AccessToken: signed, ExpiresAt: expiresAt}, nil
}
