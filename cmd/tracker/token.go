package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shift-tracker/internal/middleware/auth"
	"shift-tracker/internal/schedule"
)

func newTokenCmd(configPath *string) *cobra.Command {
	var (
		subject string
		name    string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = cfg.Auth.TokenTTL
			}

			token, err := auth.NewSigner(cfg.Auth.JWTSecret, ttl).Sign(subject, name, schedule.ParseRole(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "1", "user id")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(schedule.RoleTeamMember), "manager, coordinator or team_member")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default from config)")
	return cmd
}
