package main

import (
	"errors"
	"fmt"
	"time"

	authUsecase "gemini-task-backend/internal/auth/usecase"
	"gemini-task-backend/pkg/config"

	"github.com/spf13/cobra"
)

func newTokenCmd(cfg *config.Config) *cobra.Command {
	var (
		secret string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a relay running with AUTH_PROVIDER=jwt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("no secret: pass --secret or set JWT_SECRET")
			}
			signed, err := authUsecase.IssueToken(secret, userID, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", cfg.JWTSecret, "HS256 signing secret")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
