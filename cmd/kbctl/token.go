package main

import (
	"fmt"
	"time"

	"bi-admin/pkg/auth"
	"bi-admin/pkg/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	tokenUser   string
	tokenRole   string
	tokenTenant string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long: `Sign an access token with the configured JWT secret. Intended for local
testing of the admin API.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID, err := uuid.Parse(tokenTenant)
		if err != nil || tenantID == uuid.Nil {
			return fmt.Errorf("invalid --tenant %q", tokenTenant)
		}
		userID := uuid.New()
		if tokenUser != "" {
			if userID, err = uuid.Parse(tokenUser); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
		}
		role := auth.ParseRole(tokenRole)
		if !role.Valid() {
			return fmt.Errorf("unknown role %q", tokenRole)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ttl := cfg.JWT.Expiration
		if tokenTTL > 0 {
			ttl = tokenTTL
		}

		token, err := auth.NewJWTManager(cfg.JWT.SecretKey, ttl).GenerateToken(auth.Identity{
			UserID:         userID,
			Role:           role,
			CompanyGroupID: tenantID,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user ID (random when empty)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleManager), "viewer, operator, manager, admin or master")
	tokenCmd.Flags().StringVar(&tokenTenant, "tenant", "", "company group ID")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to the configured expiration)")
	tokenCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(tokenCmd)
}
