package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ai-receptionist/internal/auth"
	"ai-receptionist/internal/config"
	"ai-receptionist/internal/rbac"
)

func tokenCmd() *cobra.Command {
	var (
		id  auth.Identity
		cfg config.AuthConfig
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access/refresh token pair for the job read API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rbac.IsKnownRole(id.Role) {
				return fmt.Errorf("unknown role %q", id.Role)
			}
			m, err := auth.NewManager(cfg)
			if err != nil {
				return err
			}
			pair, err := m.IssuePair(time.Now(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, pair)
		},
	}
	cmd.Flags().StringVar(&id.UserID, "user", "operator-cli", "user id claim")
	cmd.Flags().StringVar(&id.ContractorID, "contractor", "", "contractor id claim (required for contractor role)")
	cmd.Flags().StringVar(&id.Role, "role", rbac.RoleOperator, "role: homeowner, contractor or operator")
	cmd.Flags().StringVar(&cfg.JWTSecret, "secret", os.Getenv("JWT_SECRET"), "signing secret")
	cmd.Flags().StringVar(&cfg.JWTIssuer, "issuer", os.Getenv("JWT_ISSUER"), "issuer claim")
	cmd.Flags().StringVar(&cfg.JWTAudience, "audience", os.Getenv("JWT_AUDIENCE"), "audience claim")
	cmd.Flags().DurationVar(&cfg.AccessTokenTTL, "access-ttl", 15*time.Minute, "access token lifetime")
	cmd.Flags().DurationVar(&cfg.RefreshTokenTTL, "refresh-ttl", 7*24*time.Hour, "refresh token lifetime")
	return cmd
}
