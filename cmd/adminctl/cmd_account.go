package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/alexjbarnes/admin-console/internal/routes"
	"github.com/spf13/cobra"
)

func (c *cli) twoFactorCommand() *cobra.Command {
	tfa := &cobra.Command{
		Use:   "2fa",
		Short: "Two-factor authentication",
	}

	verify := routed(routes.TwoFactorVerify, &cobra.Command{
		Use:   "verify <code>",
		Short: "Complete a sign-in that asked for a 2FA code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.session.VerifyTwoFactor(ctxOf(cmd), args[0]); err != nil {
				return err
			}

			return c.printSession()
		},
	})

	enable := routed(routes.SettingsTwoFA, &cobra.Command{
		Use:   "enable",
		Short: "Start 2FA setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setup, err := c.app.auth.EnableTwoFactor(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(setup, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Manual key:\t%s\n", setup.ManualKey)
				fmt.Fprintln(tw, "Add the key to your authenticator app, then run: adminctl 2fa confirm <code>")
			})
		},
	})

	confirm := routed(routes.SettingsTwoFA, &cobra.Command{
		Use:   "confirm <code>",
		Short: "Finish 2FA setup with a code from the authenticator app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := c.app.auth.ConfirmTwoFactor(ctxOf(cmd), args[0])
			if err != nil {
				return err
			}

			return c.applyTwoFactorStatus(status, "Two-factor authentication enabled")
		},
	})

	disable := routed(routes.SettingsTwoFA, &cobra.Command{
		Use:   "disable",
		Short: "Turn 2FA off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := c.readSecret("Current password: ")
			if err != nil {
				return err
			}

			status, err := c.app.auth.DisableTwoFactor(ctxOf(cmd), password)
			if err != nil {
				return err
			}

			return c.applyTwoFactorStatus(status, "Two-factor authentication disabled")
		},
	})

	tfa.AddCommand(verify, enable, confirm, disable)

	return tfa
}

// applyTwoFactorStatus mirrors a 2FA change into the cached profile.
func (c *cli) applyTwoFactorStatus(status *models.TwoFactorStatus, msg string) error {
	enabled := status.TwoFactorEnabled
	if err := c.app.session.UpdateUser(models.UserPatch{TwoFactorEnabled: &enabled}); err != nil {
		return err
	}

	return c.app.out.message(msg)
}

func (c *cli) backupCodesCommand() *cobra.Command {
	codes := &cobra.Command{
		Use:   "backup-codes",
		Short: "Manage 2FA backup codes",
	}

	show := routed(routes.BackupCodes, &cobra.Command{
		Use:   "show",
		Short: "List backup codes (masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			masked, err := c.app.auth.BackupCodes(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(masked, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "CODE\tUSED")

				for _, bc := range masked.BackupCodes {
					fmt.Fprintf(tw, "%s\t%s\n", bc.Code, yesNo(bc.Used))
				}
			})
		},
	})

	generate := routed(routes.BackupCodes, &cobra.Command{
		Use:   "generate",
		Short: "Replace the backup codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fresh, err := c.app.auth.GenerateBackupCodes(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(fresh, func(tw *tabwriter.Writer) {
				for _, code := range fresh.BackupCodes {
					fmt.Fprintln(tw, code)
				}

				fmt.Fprintln(tw, "\nStore these codes somewhere safe. They will not be shown again.")
			})
		},
	})

	codes.AddCommand(show, generate)

	return codes
}

func (c *cli) profileCommand() *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	fields := map[string]string{
		"name":       "full name",
		"phone":      "phone number",
		"avatar":     "avatar URL",
		"department": "department",
		"address":    "street address",
		"city":       "city",
		"state":      "state or region",
		"zip":        "postal code",
		"country":    "country",
	}

	values := make(map[string]*string, len(fields))

	update := routed(routes.SettingsProfile, &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed := func(name string) *string {
				if !cmd.Flags().Changed(name) {
					return nil
				}

				return values[name]
			}

			patch := models.UserPatch{
				Name:       changed("name"),
				Phone:      changed("phone"),
				Avatar:     changed("avatar"),
				Department: changed("department"),
				Address:    changed("address"),
				City:       changed("city"),
				State:      changed("state"),
				ZipCode:    changed("zip"),
				Country:    changed("country"),
			}

			if patch.IsEmpty() {
				return errors.New("nothing to update, pass at least one field flag")
			}

			updated, err := c.app.users.UpdateProfile(ctxOf(cmd), patch)
			if err != nil {
				return err
			}

			if err := c.app.session.UpdateUser(models.PatchFromProfile(*updated)); err != nil {
				return err
			}

			return c.app.out.render(updated, func(tw *tabwriter.Writer) {
				userDetail(tw, updated)
			})
		},
	})

	for name, usage := range fields {
		values[name] = update.Flags().String(name, "", usage)
	}

	profile.AddCommand(update)

	return profile
}

func (c *cli) passwordCommand() *cobra.Command {
	password := &cobra.Command{
		Use:   "password",
		Short: "Manage your password",
	}

	change := routed(routes.SettingsProfile, &cobra.Command{
		Use:   "change",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req models.ChangePasswordRequest

			var err error
			if req.CurrentPassword, err = c.readSecret("Current password: "); err != nil {
				return err
			}

			if req.NewPassword, err = c.readSecret("New password: "); err != nil {
				return err
			}

			if req.ConfirmPassword, err = c.readSecret("Confirm new password: "); err != nil {
				return err
			}

			if req.NewPassword != req.ConfirmPassword {
				return errors.New("new passwords do not match")
			}

			if err := c.app.users.ChangePassword(ctxOf(cmd), req); err != nil {
				return err
			}

			return c.app.out.message("Password changed")
		},
	})

	password.AddCommand(change)

	return password
}
