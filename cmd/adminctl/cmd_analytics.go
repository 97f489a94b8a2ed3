package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/alexjbarnes/admin-console/internal/api"
	"github.com/alexjbarnes/admin-console/internal/routes"
	"github.com/spf13/cobra"
)

func (c *cli) analyticsCommand() *cobra.Command {
	analytics := &cobra.Command{
		Use:   "analytics",
		Short: "Show portfolio analytics",
	}

	var filter api.AnalyticsFilter

	pf := analytics.PersistentFlags()
	pf.StringVar(&filter.DateFrom, "from", "", "start date (YYYY-MM-DD)")
	pf.StringVar(&filter.DateTo, "to", "", "end date (YYYY-MM-DD)")
	pf.StringVar(&filter.GroupBy, "group-by", "", "bucket size: day, week, month or year")

	overview := routed(routes.Analytics, &cobra.Command{
		Use:   "overview",
		Short: "Show headline figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := c.app.analytics.Overview(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(o, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Users:\t%d\t(%+.1f%%)\n", o.TotalUsers, o.GrowthRate.Users)
				fmt.Fprintf(tw, "Reports:\t%d\t(%+.1f%%)\n", o.TotalReports, o.GrowthRate.Reports)
				fmt.Fprintf(tw, "Revenue:\t%.2f\t(%+.1f%%)\n", o.Revenue, o.GrowthRate.Revenue)
				fmt.Fprintf(tw, "Active loans:\t%d\n", o.ActiveLoans)
				fmt.Fprintf(tw, "Disputes:\t%d\n", o.TotalDisputes)
				fmt.Fprintf(tw, "Average score:\t%.1f\n", o.AverageCreditScore)
			})
		},
	})

	trends := routed(routes.Analytics, &cobra.Command{
		Use:   "trends",
		Short: "Show month by month activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := c.app.analytics.MonthlyTrends(ctxOf(cmd), filter)
			if err != nil {
				return err
			}

			return c.app.out.render(rows, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "MONTH\tUSERS\tREPORTS\tREVENUE\tDISPUTES")

				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%d\n", r.Month, r.Users, r.Reports, r.Revenue, r.Disputes)
				}
			})
		},
	})

	scores := routed(routes.Analytics, &cobra.Command{
		Use:   "scores",
		Short: "Show the credit score distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := c.app.analytics.CreditScoreDistribution(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(rows, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "RANGE\tCOUNT\tSHARE")

				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", r.Range, r.Count, r.Percentage)
				}
			})
		},
	})

	loans := routed(routes.Analytics, &cobra.Command{
		Use:   "loans",
		Short: "Show the loan type mix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := c.app.analytics.LoanDistribution(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(rows, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "TYPE\tVALUE\tSHARE")

				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%.0f\t%.1f%%\n", r.Name, r.Value, r.Percentage)
				}
			})
		},
	})

	geo := routed(routes.Analytics, &cobra.Command{
		Use:   "geo",
		Short: "Show activity by city",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := c.app.analytics.Geographic(ctxOf(cmd), filter)
			if err != nil {
				return err
			}

			return c.app.out.render(rows, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "CITY\tSTATE\tUSERS\tREPORTS\tAVG SCORE")

				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f\n", r.City, r.State, r.Users, r.Reports, r.AverageScore)
				}
			})
		},
	})

	timeseries := routed(routes.Analytics, &cobra.Command{
		Use:       "timeseries <users|reports|revenue|disputes>",
		Short:     "Show one metric over time",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"users", "reports", "revenue", "disputes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := c.app.analytics.TimeSeries(ctxOf(cmd), args[0], filter)
			if err != nil {
				return err
			}

			return c.app.out.render(points, seriesRows(points))
		},
	})

	revenue := routed(routes.Analytics, &cobra.Command{
		Use:   "revenue",
		Short: "Show revenue over time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			points, err := c.app.analytics.RevenueTrends(ctxOf(cmd), filter)
			if err != nil {
				return err
			}

			return c.app.out.render(points, seriesRows(points))
		},
	})

	analytics.AddCommand(overview, trends, scores, loans, geo, timeseries, revenue)

	return analytics
}
