package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Command line client for the admin console",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.prepare(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.output, "output", "o", "", "output format: table, json or yaml (default from OUTPUT_FORMAT)")
	flags.StringVar(&c.apiURL, "api-url", "", "admin API base URL (default from API_BASE_URL)")
	flags.BoolVar(&c.passwordStdin, "password-stdin", false, "read passwords from stdin, one per line")

	root.AddCommand(
		c.loginCommand(),
		c.registerCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
		c.otpCommand(),
		c.twoFactorCommand(),
		c.backupCodesCommand(),
		c.profileCommand(),
		c.passwordCommand(),
		c.usersCommand(),
		c.rolesCommand(),
		c.permissionsCommand(),
		c.dashboardCommand(),
		c.reportsCommand(),
		c.analyticsCommand(),
		c.settingsCommand(),
	)

	return root
}
