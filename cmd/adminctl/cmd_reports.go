package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/alexjbarnes/admin-console/internal/api"
	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/alexjbarnes/admin-console/internal/routes"
	"github.com/spf13/cobra"
)

func (c *cli) reportsCommand() *cobra.Command {
	reports := &cobra.Command{
		Use:   "reports",
		Short: "Manage credit reports",
	}

	var filter api.ReportFilter

	list := routed(routes.Reports, &cobra.Command{
		Use:   "list",
		Short: "List credit reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.reports.List(ctxOf(cmd), filter)
			if err != nil {
				return err
			}

			return c.app.out.render(res, func(tw *tabwriter.Writer) {
				reportRows(tw, res.Reports)
				paginationRow(tw, res.Pagination)
			})
		},
	})

	f := list.Flags()
	f.StringVar(&filter.Search, "search", "", "match user name or PAN")
	f.StringVar(&filter.Status, "status", "", "filter by status (Active, Pending, Expired, Disputed)")
	f.StringVar(&filter.DateFrom, "from", "", "generated on or after (YYYY-MM-DD)")
	f.StringVar(&filter.DateTo, "to", "", "generated on or before (YYYY-MM-DD)")
	f.IntVar(&filter.MinScore, "min-score", 0, "lowest credit score")
	f.IntVar(&filter.MaxScore, "max-score", 0, "highest credit score")
	f.IntVar(&filter.Page, "page", 0, "page number")
	f.IntVar(&filter.Limit, "limit", 0, "page size")

	get := routed(routes.Reports, &cobra.Command{
		Use:   "get <id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.app.reports.Get(ctxOf(cmd), args[0])
			if err != nil {
				return err
			}

			return c.app.out.render(r, func(tw *tabwriter.Writer) {
				reportDetail(tw, r)
			})
		},
	})

	var req models.GenerateReportRequest

	generate := routed(routes.Reports, &cobra.Command{
		Use:   "generate",
		Short: "Pull a new report from the bureau",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := c.app.reports.Generate(ctxOf(cmd), req)
			if err != nil {
				return err
			}

			return c.app.out.render(r, func(tw *tabwriter.Writer) {
				reportDetail(tw, r)
			})
		},
	})
	generate.Flags().StringVar(&req.UserID, "user", "", "user id")
	generate.Flags().StringVar(&req.PAN, "pan", "", "PAN of the subject")
	generate.Flags().StringVar(&req.Purpose, "purpose", "", "reason for the pull")
	_ = generate.MarkFlagRequired("user")
	_ = generate.MarkFlagRequired("pan")

	var file string

	download := routed(routes.Reports, &cobra.Command{
		Use:   "download <id>",
		Short: "Save the report PDF",
		Long:  "Save the report PDF. With --file - the PDF is written to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			if file == "-" {
				return c.app.reports.Download(ctxOf(cmd), id, c.env.out)
			}

			path := file
			if path == "" {
				path = "report-" + id + ".pdf"
			}

			if err := c.downloadReport(cmd, id, path); err != nil {
				return err
			}

			return c.app.out.message(fmt.Sprintf("Report %s saved to %s", id, path))
		},
	})
	download.Flags().StringVarP(&file, "file", "f", "", "destination file, - for stdout (default report-<id>.pdf)")

	stats := routed(routes.Reports, &cobra.Command{
		Use:   "stats",
		Short: "Show report counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.app.reports.Stats(ctxOf(cmd))
			if err != nil {
				return err
			}

			return c.app.out.render(s, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Total:\t%d\n", s.Total)
				fmt.Fprintf(tw, "Active:\t%d\n", s.Active)
				fmt.Fprintf(tw, "Pending:\t%d\n", s.Pending)
				fmt.Fprintf(tw, "Expired:\t%d\n", s.Expired)
				fmt.Fprintf(tw, "Disputed:\t%d\n", s.Disputed)
				fmt.Fprintf(tw, "Average score:\t%.1f\n", s.AverageScore)
			})
		},
	})

	status := routed(routes.Reports, &cobra.Command{
		Use:   "status <id> <Active|Pending|Expired|Disputed>",
		Short: "Change a report's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.app.reports.UpdateStatus(ctxOf(cmd), args[0], args[1])
			if err != nil {
				return err
			}

			return c.app.out.render(r, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Report %s is now %s\n", r.ID, r.Status)
			})
		},
	})

	remove := routed(routes.Reports, &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.reports.Delete(ctxOf(cmd), args[0]); err != nil {
				return err
			}

			return c.app.out.message(fmt.Sprintf("Report %s deleted", args[0]))
		},
	})

	reports.AddCommand(list, get, generate, download, stats, status, remove)

	return reports
}

// downloadReport writes the PDF to path. A failed download leaves no
// partial file behind.
func (c *cli) downloadReport(cmd *cobra.Command, id, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	err = c.app.reports.Download(ctxOf(cmd), id, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		if rerr := os.Remove(path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			c.app.logger.Warn("removing partial download", slog.String("path", path), slog.String("error", rerr.Error()))
		}

		return err
	}

	return nil
}

func reportRows(tw *tabwriter.Writer, reports []models.CreditReport) {
	fmt.Fprintln(tw, "ID\tUSER\tPAN\tSCORE\tSTATUS\tGENERATED")

	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, dash(r.UserName), dash(r.PAN), r.CreditScore, dash(r.Status), dash(r.GeneratedDate))
	}
}

func reportDetail(tw *tabwriter.Writer, r *models.CreditReport) {
	fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	fmt.Fprintf(tw, "User:\t%s (%s)\n", dash(r.UserName), dash(r.UserID))
	fmt.Fprintf(tw, "PAN:\t%s\n", dash(r.PAN))
	fmt.Fprintf(tw, "Score:\t%d\n", r.CreditScore)
	fmt.Fprintf(tw, "Status:\t%s\n", dash(r.Status))
	fmt.Fprintf(tw, "Generated:\t%s\n", dash(r.GeneratedDate))
	fmt.Fprintf(tw, "Updated:\t%s\n", dash(r.LastUpdated))

	if r.ReportData == nil {
		return
	}

	d := r.ReportData
	fmt.Fprintf(tw, "Range:\t%s\n", dash(d.CreditScore.Range))
	fmt.Fprintf(tw, "Accounts:\t%d\n", len(d.Accounts))
	fmt.Fprintf(tw, "Inquiries:\t%d\n", len(d.Inquiries))
	fmt.Fprintf(tw, "Disputes:\t%d\n", len(d.Disputes))
}
