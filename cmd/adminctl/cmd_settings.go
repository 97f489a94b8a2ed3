package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/alexjbarnes/admin-console/internal/routes"
	"github.com/spf13/cobra"
)

// flagValue returns &v when the flag was set on the command line and nil
// otherwise, so patches only carry what the user asked to change.
func flagValue[T any](cmd *cobra.Command, name string, v T) *T {
	if !cmd.Flags().Changed(name) {
		return nil
	}

	return &v
}

func (c *cli) settingsCommand() *cobra.Command {
	settings := &cobra.Command{
		Use:   "settings",
		Short: "View and change console settings",
	}

	settings.AddCommand(c.systemSettingsCommand(), c.notificationSettingsCommand(), c.securitySettingsCommand())

	return settings
}

func (c *cli) systemSettingsCommand() *cobra.Command {
	system := &cobra.Command{
		Use:   "system",
		Short: "Console-wide settings",
	}

	show := routed(routes.Settings, &cobra.Command{
		Use:   "show",
		Short: "Show system settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.app.settings.System(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(s, systemRows(s))
		},
	})

	var v models.SystemSettings

	update := routed(routes.Settings, &cobra.Command{
		Use:   "update",
		Short: "Change system settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch := models.SystemSettingsPatch{
				CompanyName:     flagValue(cmd, "company", v.CompanyName),
				SupportEmail:    flagValue(cmd, "support-email", v.SupportEmail),
				SupportPhone:    flagValue(cmd, "support-phone", v.SupportPhone),
				Timezone:        flagValue(cmd, "timezone", v.Timezone),
				MaintenanceMode: flagValue(cmd, "maintenance", v.MaintenanceMode),
				APIRateLimit:    flagValue(cmd, "rate-limit", v.APIRateLimit),
				DataRetention:   flagValue(cmd, "retention", v.DataRetention),
				SessionTimeout:  flagValue(cmd, "session-timeout", v.SessionTimeout),
				PasswordExpiry:  flagValue(cmd, "password-expiry", v.PasswordExpiry),
				Require2FA:      flagValue(cmd, "require-2fa", v.Require2FA),
			}

			s, err := c.app.settings.UpdateSystem(ctxOf(cmd), patch)
			if err != nil {
				return err
			}

			return c.app.out.render(s, systemRows(s))
		},
	})

	f := update.Flags()
	f.StringVar(&v.CompanyName, "company", "", "company name")
	f.StringVar(&v.SupportEmail, "support-email", "", "support email address")
	f.StringVar(&v.SupportPhone, "support-phone", "", "support phone number")
	f.StringVar(&v.Timezone, "timezone", "", "IANA time zone")
	f.BoolVar(&v.MaintenanceMode, "maintenance", false, "put the console in maintenance mode")
	f.IntVar(&v.APIRateLimit, "rate-limit", 0, "API requests per minute")
	f.IntVar(&v.DataRetention, "retention", 0, "data retention in days")
	f.IntVar(&v.SessionTimeout, "session-timeout", 0, "session timeout in minutes")
	f.IntVar(&v.PasswordExpiry, "password-expiry", 0, "password expiry in days")
	f.BoolVar(&v.Require2FA, "require-2fa", false, "require two-factor authentication")

	system.AddCommand(show, update)

	return system
}

func (c *cli) notificationSettingsCommand() *cobra.Command {
	notifications := &cobra.Command{
		Use:   "notifications",
		Short: "Notification channels and topics",
	}

	show := routed(routes.Settings, &cobra.Command{
		Use:   "show",
		Short: "Show notification settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.app.settings.Notifications(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(s, notificationRows(s))
		},
	})

	var v models.NotificationSettings

	update := routed(routes.Settings, &cobra.Command{
		Use:   "update",
		Short: "Change notification settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch := models.NotificationSettingsPatch{
				Email:        flagValue(cmd, "email", v.Email),
				SMS:          flagValue(cmd, "sms", v.SMS),
				Push:         flagValue(cmd, "push", v.Push),
				Reports:      flagValue(cmd, "reports", v.Reports),
				Disputes:     flagValue(cmd, "disputes", v.Disputes),
				SystemAlerts: flagValue(cmd, "system-alerts", v.SystemAlerts),
			}

			s, err := c.app.settings.UpdateNotifications(ctxOf(cmd), patch)
			if err != nil {
				return err
			}

			return c.app.out.render(s, notificationRows(s))
		},
	})

	f := update.Flags()
	f.BoolVar(&v.Email, "email", false, "email notifications")
	f.BoolVar(&v.SMS, "sms", false, "SMS notifications")
	f.BoolVar(&v.Push, "push", false, "push notifications")
	f.BoolVar(&v.Reports, "reports", false, "report notifications")
	f.BoolVar(&v.Disputes, "disputes", false, "dispute notifications")
	f.BoolVar(&v.SystemAlerts, "system-alerts", false, "system alerts")

	notifications.AddCommand(show, update)

	return notifications
}

func (c *cli) securitySettingsCommand() *cobra.Command {
	security := &cobra.Command{
		Use:   "security",
		Short: "Login and password policy",
	}

	show := routed(routes.Settings, &cobra.Command{
		Use:   "show",
		Short: "Show security settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.app.settings.Security(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(s, securityRows(s))
		},
	})

	var v models.SecuritySettings

	update := routed(routes.Settings, &cobra.Command{
		Use:   "update",
		Short: "Change security settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch := models.SecuritySettingsPatch{
				TwoFactorEnabled:      flagValue(cmd, "2fa", v.TwoFactorEnabled),
				SessionTimeout:        flagValue(cmd, "session-timeout", v.SessionTimeout),
				PasswordExpiry:        flagValue(cmd, "password-expiry", v.PasswordExpiry),
				MaxLoginAttempts:      flagValue(cmd, "max-attempts", v.MaxLoginAttempts),
				LockoutDuration:       flagValue(cmd, "lockout", v.LockoutDuration),
				RequireStrongPassword: flagValue(cmd, "strong-passwords", v.RequireStrongPassword),
			}

			s, err := c.app.settings.UpdateSecurity(ctxOf(cmd), patch)
			if err != nil {
				return err
			}

			return c.app.out.render(s, securityRows(s))
		},
	})

	f := update.Flags()
	f.BoolVar(&v.TwoFactorEnabled, "2fa", false, "enable two-factor authentication")
	f.IntVar(&v.SessionTimeout, "session-timeout", 0, "session timeout in minutes")
	f.IntVar(&v.PasswordExpiry, "password-expiry", 0, "password expiry in days")
	f.IntVar(&v.MaxLoginAttempts, "max-attempts", 0, "failed logins before lockout")
	f.IntVar(&v.LockoutDuration, "lockout", 0, "lockout duration in minutes")
	f.BoolVar(&v.RequireStrongPassword, "strong-passwords", false, "require strong passwords")

	security.AddCommand(show, update)

	return security
}

func systemRows(s *models.SystemSettings) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Company:\t%s\n", dash(s.CompanyName))
		fmt.Fprintf(tw, "Support email:\t%s\n", dash(s.SupportEmail))
		fmt.Fprintf(tw, "Support phone:\t%s\n", dash(s.SupportPhone))
		fmt.Fprintf(tw, "Timezone:\t%s\n", dash(s.Timezone))
		fmt.Fprintf(tw, "Maintenance:\t%s\n", yesNo(s.MaintenanceMode))
		fmt.Fprintf(tw, "Rate limit:\t%d/min\n", s.APIRateLimit)
		fmt.Fprintf(tw, "Retention:\t%d days\n", s.DataRetention)
		fmt.Fprintf(tw, "Session timeout:\t%d min\n", s.SessionTimeout)
		fmt.Fprintf(tw, "Password expiry:\t%d days\n", s.PasswordExpiry)
		fmt.Fprintf(tw, "Require 2FA:\t%s\n", yesNo(s.Require2FA))
	}
}

func notificationRows(s *models.NotificationSettings) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Email:\t%s\n", yesNo(s.Email))
		fmt.Fprintf(tw, "SMS:\t%s\n", yesNo(s.SMS))
		fmt.Fprintf(tw, "Push:\t%s\n", yesNo(s.Push))
		fmt.Fprintf(tw, "Reports:\t%s\n", yesNo(s.Reports))
		fmt.Fprintf(tw, "Disputes:\t%s\n", yesNo(s.Disputes))
		fmt.Fprintf(tw, "System alerts:\t%s\n", yesNo(s.SystemAlerts))
	}
}

func securityRows(s *models.SecuritySettings) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Two-factor:\t%s\n", yesNo(s.TwoFactorEnabled))
		fmt.Fprintf(tw, "Session timeout:\t%d min\n", s.SessionTimeout)
		fmt.Fprintf(tw, "Password expiry:\t%d days\n", s.PasswordExpiry)
		fmt.Fprintf(tw, "Max attempts:\t%d\n", s.MaxLoginAttempts)
		fmt.Fprintf(tw, "Lockout:\t%d min\n", s.LockoutDuration)
		fmt.Fprintf(tw, "Strong passwords:\t%s\n", yesNo(s.RequireStrongPassword))
	}
}
