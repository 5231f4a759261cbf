package main

import (
	"context"
	"fmt"
	"os"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/spf13/cobra"
)

const passwordEnv = "GOAUTH_PASSWORD"

// passwordFrom falls back to GOAUTH_PASSWORD so secrets stay out of shell
// history.
func passwordFrom(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(passwordEnv)
}

func newLoginCommand(opts *options) *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *goAuthClient.Manager) error {
				err := m.Login(ctx, goAuthClient.LoginRequest{
					Email:      email,
					Password:   passwordFrom(password),
					RememberMe: remember,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(opts.stdout, renderStatus(m.State(), m.NextRefresh))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (default $"+passwordEnv+")")
	cmd.Flags().BoolVar(&remember, "remember", true, "keep the session after this command exits")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCommand(opts *options) *cobra.Command {
	var req goAuthClient.RegisterRequest
	var password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a customer account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *goAuthClient.Manager) error {
				req.Password = passwordFrom(password)
				req.RememberMe = true
				if err := m.Register(ctx, req); err != nil {
					return err
				}
				fmt.Fprintln(opts.stdout, renderStatus(m.State(), m.NextRefresh))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (default $"+passwordEnv+")")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *goAuthClient.Manager) error {
				m.Logout(ctx)
				fmt.Fprintln(opts.stdout, renderStatus(m.State(), m.NextRefresh))
				return nil
			})
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Restore the stored session and show it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(_ context.Context, m *goAuthClient.Manager) error {
				fmt.Fprintln(opts.stdout, renderStatus(m.State(), m.NextRefresh))
				return nil
			})
		},
	}
}

func newRefreshCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *goAuthClient.Manager) error {
				if err := requireSignedIn(m); err != nil {
					return err
				}
				if err := m.Refresh(ctx); err != nil {
					return err
				}
				fmt.Fprintln(opts.stdout, renderStatus(m.State(), m.NextRefresh))
				return nil
			})
		},
	}
}

func newProfileCommand(opts *options) *cobra.Command {
	var name, email, avatar string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Fetch the profile, or update it when a field flag is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *goAuthClient.Manager) error {
				if err := requireSignedIn(m); err != nil {
					return err
				}
				var update goAuthClient.ProfileUpdate
				if cmd.Flags().Changed("name") {
					update.Name = &name
				}
				if cmd.Flags().Changed("email") {
					update.Email = &email
				}
				if cmd.Flags().Changed("avatar") {
					update.Avatar = &avatar
				}

				var (
					user *goAuthClient.User
					err  error
				)
				if update.Name == nil && update.Email == nil && update.Avatar == nil {
					user, err = m.SyncProfile(ctx)
				} else {
					user, err = m.UpdateProfile(ctx, update)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(opts.stdout, renderUser(user))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	cmd.Flags().StringVar(&avatar, "avatar", "", "new avatar URL")
	return cmd
}

func newPasswordCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change, forget or reset a password",
	}

	var current, next string
	change := &cobra.Command{
		Use:   "change",
		Short: "Change the signed-in account's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *goAuthClient.Manager) error {
				if err := requireSignedIn(m); err != nil {
					return err
				}
				return m.ChangePassword(ctx, goAuthClient.ChangePasswordRequest{
					CurrentPassword: passwordFrom(current),
					NewPassword:     next,
				})
			})
		},
	}
	change.Flags().StringVar(&current, "current", "", "current password (default $"+passwordEnv+")")
	change.Flags().StringVar(&next, "new", "", "new password")
	_ = change.MarkFlagRequired("new")

	var forgotEmail string
	forgot := &cobra.Command{
		Use:   "forgot",
		Short: "Request a reset link",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *goAuthClient.Manager) error {
				return m.ForgotPassword(ctx, goAuthClient.ForgotPasswordRequest{Email: forgotEmail})
			})
		},
	}
	forgot.Flags().StringVar(&forgotEmail, "email", "", "account email")
	_ = forgot.MarkFlagRequired("email")

	var reset goAuthClient.ResetPasswordRequest
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, m *goAuthClient.Manager) error {
				return m.ResetPassword(ctx, reset)
			})
		},
	}
	resetCmd.Flags().StringVar(&reset.Token, "token", "", "reset token")
	resetCmd.Flags().StringVar(&reset.Email, "email", "", "account email")
	resetCmd.Flags().StringVar(&reset.Password, "new", "", "new password")
	resetCmd.Flags().StringVar(&reset.PasswordConfirmation, "confirm", "", "repeat the new password (default --new)")
	for _, f := range []string{"token", "email", "new"} {
		_ = resetCmd.MarkFlagRequired(f)
	}
	resetCmd.PreRun = func(*cobra.Command, []string) {
		if reset.PasswordConfirmation == "" {
			reset.PasswordConfirmation = reset.Password
		}
	}

	cmd.AddCommand(change, forgot, resetCmd)
	return cmd
}
