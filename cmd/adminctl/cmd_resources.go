package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/alexjbarnes/admin-console/internal/api"
	"github.com/alexjbarnes/admin-console/internal/routes"
	"github.com/spf13/cobra"
)

func (c *cli) usersCommand() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	var filter api.UserFilter

	list := routed(routes.Users, &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.users.List(ctxOf(cmd), filter)
			if err != nil {
				return err
			}

			return c.app.out.render(res, func(tw *tabwriter.Writer) {
				userRows(tw, res.Users)
				paginationRow(tw, res.Pagination)
			})
		},
	})

	f := list.Flags()
	f.StringVar(&filter.Search, "search", "", "match name, email or phone")
	f.StringVar(&filter.Role, "role", "", "filter by role")
	f.StringVar(&filter.Status, "status", "", "filter by status (Active, Suspended, Inactive)")
	f.IntVar(&filter.Page, "page", 0, "page number")
	f.IntVar(&filter.Limit, "limit", 0, "page size")
	f.StringVar(&filter.SortBy, "sort-by", "", "sort field")
	f.StringVar(&filter.SortOrder, "sort-order", "", "asc or desc")

	get := routed(routes.Users, &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.app.users.Get(ctxOf(cmd), args[0])
			if err != nil {
				return err
			}

			return c.app.out.render(u, func(tw *tabwriter.Writer) {
				userDetail(tw, u)
			})
		},
	})

	suspend := c.userAction("suspend", "Suspend a user", "suspended", c.suspendUser)
	activate := c.userAction("activate", "Lift a suspension", "activated", c.activateUser)
	remove := c.userAction("delete", "Delete a user", "deleted", c.deleteUser)

	stats := routed(routes.Users, &cobra.Command{
		Use:   "stats",
		Short: "Show user counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.app.users.Stats(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(s, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Total:\t%d\n", s.Total)
				fmt.Fprintf(tw, "Active:\t%d\n", s.Active)
				fmt.Fprintf(tw, "Suspended:\t%d\n", s.Suspended)
				fmt.Fprintf(tw, "Inactive:\t%d\n", s.Inactive)
				fmt.Fprintf(tw, "New this month:\t%d\n", s.NewThisMonth)
			})
		},
	})

	users.AddCommand(list, get, suspend, activate, remove, stats)

	return users
}

func (c *cli) suspendUser(cmd *cobra.Command, id string) error {
	return c.app.users.Suspend(ctxOf(cmd), id)
}

func (c *cli) activateUser(cmd *cobra.Command, id string) error {
	return c.app.users.Activate(ctxOf(cmd), id)
}

func (c *cli) deleteUser(cmd *cobra.Command, id string) error {
	return c.app.users.Delete(ctxOf(cmd), id)
}

func (c *cli) userAction(use, short, done string, fn func(*cobra.Command, string) error) *cobra.Command {
	return routed(routes.Users, &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fn(cmd, args[0]); err != nil {
				return err
			}

			return c.app.out.message(fmt.Sprintf("User %s %s", args[0], done))
		},
	})
}

func (c *cli) rolesCommand() *cobra.Command {
	roles := &cobra.Command{
		Use:   "roles",
		Short: "Manage roles",
	}

	var (
		filter     api.RoleFilter
		activeOnly bool
	)

	list := routed(routes.Roles, &cobra.Command{
		Use:   "list",
		Short: "List roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if activeOnly {
				active := true
				filter.IsActive = &active
			}

			res, err := c.app.roles.List(ctxOf(cmd), filter)
			if err != nil {
				return err
			}

			return c.app.out.render(res, func(tw *tabwriter.Writer) {
				roleRows(tw, res.Roles)
				paginationRow(tw, res.Pagination)
			})
		},
	})
	list.Flags().BoolVar(&activeOnly, "active", false, "only active roles")
	list.Flags().IntVar(&filter.Page, "page", 0, "page number")
	list.Flags().IntVar(&filter.Limit, "limit", 0, "page size")

	get := routed(routes.Roles, &cobra.Command{
		Use:   "get <id>",
		Short: "Show one role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := c.app.roles.Get(ctxOf(cmd), args[0])
			if err != nil {
				return err
			}

			return c.app.out.render(role, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "ID:\t%s\n", role.ID)
				fmt.Fprintf(tw, "Name:\t%s\n", role.Name)
				fmt.Fprintf(tw, "Active:\t%s\n", yesNo(role.IsActive))
				fmt.Fprintf(tw, "Description:\t%s\n", dash(role.Description))
				fmt.Fprintln(tw)
				permissionRows(tw, role.Permissions)
			})
		},
	})

	assign := routed(routes.Roles, &cobra.Command{
		Use:   "assign <user-id> <role-id>",
		Short: "Give a user a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.roles.Assign(ctxOf(cmd), args[0], args[1]); err != nil {
				return err
			}

			return c.app.out.message(fmt.Sprintf("Role %s assigned to %s", args[1], args[0]))
		},
	})

	remove := routed(routes.Roles, &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.roles.Delete(ctxOf(cmd), args[0]); err != nil {
				return err
			}

			return c.app.out.message(fmt.Sprintf("Role %s deleted", args[0]))
		},
	})

	roles.AddCommand(list, get, assign, remove)

	return roles
}

func (c *cli) permissionsCommand() *cobra.Command {
	perms := &cobra.Command{
		Use:   "permissions",
		Short: "Manage permissions",
	}

	var (
		filter     api.PermissionFilter
		activeOnly bool
	)

	list := routed(routes.Permissions, &cobra.Command{
		Use:   "list",
		Short: "List permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if activeOnly {
				active := true
				filter.IsActive = &active
			}

			res, err := c.app.permissions.List(ctxOf(cmd), filter)
			if err != nil {
				return err
			}

			return c.app.out.render(res, func(tw *tabwriter.Writer) {
				permissionRows(tw, res.Permissions)
				paginationRow(tw, res.Pagination)
			})
		},
	})
	list.Flags().BoolVar(&activeOnly, "active", false, "only active permissions")
	list.Flags().StringVar(&filter.Module, "module", "", "filter by module")
	list.Flags().StringVar(&filter.Action, "action", "", "filter by action (read, update, manage, all)")
	list.Flags().IntVar(&filter.Page, "page", 0, "page number")
	list.Flags().IntVar(&filter.Limit, "limit", 0, "page size")

	get := routed(routes.Permissions, &cobra.Command{
		Use:   "get <id>",
		Short: "Show one permission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.app.permissions.Get(ctxOf(cmd), args[0])
			if err != nil {
				return err
			}

			return c.app.out.render(p, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
				fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
				fmt.Fprintf(tw, "Module:\t%s\n", dash(p.Module))
				fmt.Fprintf(tw, "Action:\t%s\n", dash(p.Action))
				fmt.Fprintf(tw, "Active:\t%s\n", yesNo(p.IsActive))
				fmt.Fprintf(tw, "Description:\t%s\n", dash(p.Description))
			})
		},
	})

	assign := routed(routes.Permissions, &cobra.Command{
		Use:   "assign <user-id> <permission-id>...",
		Short: "Grant permissions directly to a user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.permissions.Assign(ctxOf(cmd), args[0], args[1:]); err != nil {
				return err
			}

			return c.app.out.message(fmt.Sprintf("%d permission(s) assigned to %s", len(args)-1, args[0]))
		},
	})

	perms.AddCommand(list, get, assign)

	return perms
}

func (c *cli) dashboardCommand() *cobra.Command {
	return routed(routes.Home, &cobra.Command{
		Use:   "dashboard",
		Short: "Show the overview counters and newest users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := c.app.dashboard.Stats(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(stats, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Users:\t%d\t(%d verified, %d admins)\n", stats.TotalUsers, stats.VerifiedUsers, stats.AdminUsers)
				fmt.Fprintf(tw, "Roles:\t%d\t(%d active)\n", stats.TotalRoles, stats.ActiveRoles)
				fmt.Fprintf(tw, "Permissions:\t%d\t(%d active)\n", stats.TotalPermissions, stats.ActivePermissions)
				fmt.Fprintln(tw, "\nRecent users")
				userRows(tw, stats.RecentUsers)
			})
		},
	})
}
