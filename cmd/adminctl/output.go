package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alexjbarnes/admin-console/internal/config"
	"github.com/alexjbarnes/admin-console/internal/models"
	"gopkg.in/yaml.v3"
)

func validFormat(f string) bool {
	switch f {
	case config.FormatTable, config.FormatJSON, config.FormatYAML:
		return true
	}

	return false
}

// renderer writes command results in the selected format.
type renderer struct {
	w      io.Writer
	format string
}

// render writes v as JSON or YAML, or calls table with a tabwriter.
func (r renderer) render(v any, table func(tw *tabwriter.Writer)) error {
	switch r.format {
	case config.FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)

	case config.FormatYAML:
		// Go through JSON so field names and custom encodings match
		// the API's.
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}

		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}

		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)

		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}

		return enc.Close()

	default:
		tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
		table(tw)

		return tw.Flush()
	}
}

// message prints a one-line confirmation, or {"ok":true,"message":...}
// in structured formats.
func (r renderer) message(msg string) error {
	return r.render(map[string]any{"ok": true, "message": msg}, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, msg)
	})
}

func userRows(tw *tabwriter.Writer, users []models.UserProfile) {
	fmt.Fprintln(tw, "ID\tNAME\tCONTACT\tROLE\tSTATUS\tVERIFIED\t2FA\tCREATED")

	for i := range users {
		u := &users[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Name, u.Contact(), u.RoleName(), dash(u.Status),
			yesNo(u.IsVerified), yesNo(u.TwoFactorEnabled), date(u.CreatedAt))
	}
}

func userDetail(tw *tabwriter.Writer, u *models.UserProfile) {
	rows := [][2]string{
		{"ID", u.ID},
		{"Name", u.Name},
		{"Email", dash(u.Email)},
		{"Phone", dash(u.Phone)},
		{"Type", dash(u.Type)},
		{"Role", u.RoleName()},
		{"Status", dash(u.Status)},
		{"Verified", yesNo(u.IsVerified)},
		{"2FA", yesNo(u.TwoFactorEnabled)},
		{"Department", dash(u.Department)},
		{"Location", dash(joinNonEmpty(", ", u.City, u.State, u.Country))},
		{"Created", date(u.CreatedAt)},
	}

	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
}

func roleRows(tw *tabwriter.Writer, roles []models.Role) {
	fmt.Fprintln(tw, "ID\tNAME\tACTIVE\tPERMISSIONS\tDESCRIPTION")

	for _, r := range roles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, yesNo(r.IsActive), len(r.Permissions), dash(r.Description))
	}
}

func permissionRows(tw *tabwriter.Writer, perms []models.Permission) {
	fmt.Fprintln(tw, "ID\tNAME\tMODULE\tACTION\tACTIVE\tFIELDS")

	for _, p := range perms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, dash(p.Module), dash(p.Action), yesNo(p.IsActive), dash(strings.Join(p.Fields, ",")))
	}
}

func paginationRow(tw *tabwriter.Writer, p models.Pagination) {
	if p.Total == 0 && p.PageCount() == 0 {
		return
	}

	fmt.Fprintf(tw, "\npage %d of %d (%d total)\n", p.Page, p.PageCount(), p.Total)
}

func seriesRows(points []models.TimeSeriesPoint) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "DATE\tVALUE\tLABEL")

		for _, p := range points {
			fmt.Fprintf(tw, "%s\t%.2f\t%s\n", p.Date, p.Value, dash(p.Label))
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}

	return t.Format("2006-01-02")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, sep)
}
