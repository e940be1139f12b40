package main

import (
	"context"
	"fmt"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			var err error
			if email == "" {
				if email, err = prompt(a.errOut, "Email: "); err != nil {
					return err
				}
			}
			password, err := promptPassword(a.errOut, "Password: ")
			if err != nil {
				return err
			}

			user, err := a.session.Login(ctx, api.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			a.notes.Success("Logged in", fmt.Sprintf("Welcome, %s", displayName(user)))
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var reg api.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			var err error
			if reg.Email == "" {
				if reg.Email, err = prompt(a.errOut, "Email: "); err != nil {
					return err
				}
			}
			if reg.Password, err = promptPassword(a.errOut, "Password: "); err != nil {
				return err
			}

			user, err := a.session.Register(ctx, reg)
			if err != nil {
				return err
			}
			a.notes.Success("Account created", fmt.Sprintf("Welcome, %s", displayName(user)))
			return nil
		}),
	}
	cmd.Flags().StringVar(&reg.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "First name (required)")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "Last name (required)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored token",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.session.Logout(ctx); err != nil {
				return err
			}
			a.notes.Info("Logged out", "")
			return nil
		}),
	}
}

func newWhoamiCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			a.session.Restore(ctx)
			user := a.session.User()
			if user == nil {
				return fmt.Errorf("not logged in")
			}
			if jsonOut {
				return printJSON(a.out, user)
			}
			fmt.Fprintf(a.out, "ID: %s\nName: %s\nEmail: %s\nRole: %s\n", user.ID, user.FullName(), user.Email, user.Role)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func displayName(u *api.User) string {
	if u == nil {
		return ""
	}
	return u.FullName()
}
