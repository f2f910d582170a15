package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/staff-admin/internal/persistence"
	"github.com/spec-kit/staff-admin/internal/repository"
	"github.com/spec-kit/staff-admin/internal/service"
)

// Accounts only exist for the embedded postgres backend; the remote API
// manages its own.
func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage operator accounts of the embedded backend",
	}
	cmd.AddCommand(newAccountCreateCmd())
	cmd.AddCommand(newAccountResetPasswordCmd())
	return cmd
}

func newAccountCreateCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an operator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthService(cmd.Context(), func(ctx context.Context, auth *service.AuthService) error {
				account, err := auth.CreateAccount(ctx, username, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created account %s (%s)\n", account.Username, account.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAccountResetPasswordCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace the password of an operator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthService(cmd.Context(), func(ctx context.Context, auth *service.AuthService) error {
				if err := auth.ResetPassword(ctx, username, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", username)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username (required)")
	cmd.Flags().StringVar(&password, "password", "", "New password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func withAuthService(ctx context.Context, fn func(context.Context, *service.AuthService) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	return fn(ctx, service.NewAuthService(cfg.Auth, repository.NewAccountRepository(pg.Pool)))
}
