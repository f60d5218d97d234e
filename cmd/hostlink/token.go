package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/awsl-project/hostlink/internal/remoteaccess"
)

func newTokenCommand() *cobra.Command {
	var (
		o   overrides
		ttl time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a connection token for remote clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), &o)
			if err != nil {
				return err
			}
			if cfg.Remote.Secret == "" {
				return errors.New("no secret configured: set HOSTLINK_REMOTE_SECRET or --secret")
			}
			token, err := remoteaccess.IssueToken(cfg.Remote.Secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.secret, "secret", "", "token signing secret (HOSTLINK_REMOTE_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
