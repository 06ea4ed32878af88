package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/makkenzo/license-admin-console/internal/domain/activity"
)

const histogramWidth = 40

type StatsCmd struct {
	Range string `help:"Time window (7days, 30days, 90days)" default:"7days" enum:"7days,30days,90days"`
	Logs  bool   `help:"Also print the most recent activity entries"`
}

func (s *StatsCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := newEnv(globals)
	if err != nil {
		return err
	}
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	if err := e.stats.Load(ctx); err != nil {
		return err
	}

	rng := activity.ParseRange(s.Range)
	report := e.stats.Summary(rng, e.now(), e.loc)

	e.printf("Licenses: %d total, %d active, %d expired (activation rate %d%%)\n",
		report.Stats.TotalLicenses, report.Stats.ActiveLicenses, report.Stats.ExpiredLicenses, report.ActiveRatio)
	e.printf("Active users: %d\n\n", report.Stats.ActiveUsers)

	c := report.Summary.Counts
	e.printf("Last %d days: %d validations, %d creations, %d revocations, %d errors\n",
		rng.Days(), c.Validations, c.Creations, c.Revocations, c.Errors)

	if report.Summary.NoData {
		e.printf("No data available for this period.\n")
	} else {
		for _, d := range report.Summary.Daily {
			bar := strings.Repeat("#", max(1, d.Percent*histogramWidth/100))
			e.printf("%s %-*s %d\n", d.Label, histogramWidth, bar, d.Count)
		}
	}

	if s.Logs && len(report.Recent) > 0 {
		e.printf("\n")
		w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tACTION\tKEY\tRESULT\tNOTES")
		for _, r := range report.Recent {
			result := "ok"
			if !r.Entry.Success {
				result = "failed"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.At, r.Entry.Action, r.ShortKey, result, r.Entry.Notes)
		}
		w.Flush()
	}
	return nil
}

type DashboardCmd struct{}

func (d *DashboardCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := newEnv(globals)
	if err != nil {
		return err
	}
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	if err := e.dashboard.Load(ctx); err != nil {
		return err
	}

	st := e.dashboard.Snapshot().Stats
	e.printf("Total licenses:   %d\n", st.TotalLicenses)
	e.printf("Active licenses:  %d\n", st.ActiveLicenses)
	e.printf("Expired licenses: %d\n", st.ExpiredLicenses)
	e.printf("Active users:     %d\n\n", st.ActiveUsers)

	recent := e.dashboard.Recent(e.now(), e.loc)
	if len(recent) == 0 {
		e.printf("No licenses yet.\n")
		return nil
	}
	e.printf("Recent licenses:\n")
	printLicenseRows(e, recent, false)
	return nil
}
