package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/alexjbarnes/admin-console/internal/routes"
	"github.com/alexjbarnes/admin-console/internal/session"
	"github.com/spf13/cobra"
)

func (c *cli) loginCommand() *cobra.Command {
	return routed(routes.Login, &cobra.Command{
		Use:   "login <email-or-phone>",
		Short: "Sign in with a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := c.readSecret("Password: ")
			if err != nil {
				return err
			}

			if err := c.app.session.LoginWithPassword(ctxOf(cmd), args[0], password); err != nil {
				return err
			}

			return c.printSession()
		},
	})
}

func (c *cli) registerCommand() *cobra.Command {
	var req models.RegisterRequest

	cmd := routed(routes.Register, &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Email == "" && req.Phone == "" {
				return errors.New("one of --email or --phone is required")
			}

			password, err := c.readSecret("Choose a password: ")
			if err != nil {
				return err
			}

			req.Password = password

			user, err := c.app.auth.Register(ctxOf(cmd), req)
			if err != nil {
				return err
			}

			if user == nil {
				return c.app.out.message("Account created, sign in with: adminctl login <email-or-phone>")
			}

			return c.app.out.message(fmt.Sprintf("Account %s created, sign in with: adminctl login %s", user.ID, user.Contact()))
		},
	})

	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (c *cli) logoutCommand() *cobra.Command {
	return routed(routes.Home, &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.session.Logout(ctxOf(cmd))
		},
	})
}

func (c *cli) whoamiCommand() *cobra.Command {
	return routed(routes.Profile, &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := c.app.users.Profile(ctxOf(cmd))
			if err != nil {
				return err
			}

			if err := c.app.session.UpdateUser(models.PatchFromProfile(*profile)); err != nil {
				return err
			}

			return c.app.out.render(profile, func(tw *tabwriter.Writer) {
				userDetail(tw, profile)
			})
		},
	})
}

func (c *cli) otpCommand() *cobra.Command {
	otp := &cobra.Command{
		Use:   "otp",
		Short: "Sign in with a one-time code",
	}

	send := routed(routes.Login, &cobra.Command{
		Use:   "send <email-or-phone>",
		Short: "Send a one-time code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.session.RequestOtp(ctxOf(cmd), args[0])
		},
	})

	var identifier string

	verify := routed(routes.OtpVerify, &cobra.Command{
		Use:   "verify <code>",
		Short: "Submit the one-time code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.session.VerifyOtp(ctxOf(cmd), identifier, args[0]); err != nil {
				return err
			}

			return c.printSession()
		},
	})
	verify.Flags().StringVar(&identifier, "identifier", "", "email or phone (defaults to the one the code was sent to)")

	otp.AddCommand(send, verify)

	return otp
}

// printSession shows the outcome of a credential submission.
func (c *cli) printSession() error {
	snap := c.app.session.Snapshot()

	switch snap.State {
	case session.Authenticated:
		return c.app.out.render(snap.User, func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "Signed in as %s (%s)\n", snap.User.Name, snap.User.RoleName())
		})
	case session.Awaiting2FA:
		return c.app.out.render(map[string]any{"require2FA": true, "userId": snap.Challenge.UserID}, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "Two-factor code required")
		})
	default:
		return nil
	}
}
