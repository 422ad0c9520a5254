package cmd

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/templui/ritual/internal/config"
	"github.com/templui/ritual/internal/middleware"
	"github.com/templui/ritual/internal/model"
)

func TokenCmd() *cobra.Command {
	var (
		name   string
		expiry time.Duration
	)

	c := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for local development",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to issue tokens in production")
			}

			verifier := middleware.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer)
			now := time.Now()
			token, err := verifier.Sign(model.Author{ID: args[0], Name: name}, jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	c.Flags().StringVar(&name, "name", "", "Display name carried in the token")
	c.Flags().DurationVar(&expiry, "expiry", 24*time.Hour, "Token lifetime")
	return c
}
