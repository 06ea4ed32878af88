package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/service"
)

type LicensesCmd struct {
	List   LicensesListCmd   `cmd:"" default:"withargs" help:"List licenses"`
	Create LicensesCreateCmd `cmd:"" help:"Create a license"`
	Update LicensesUpdateCmd `cmd:"" help:"Edit a license"`
	Revoke LicensesRevokeCmd `cmd:"" help:"Revoke a license"`
	Delete LicensesDeleteCmd `cmd:"" help:"Delete a license permanently"`
}

type LicensesListCmd struct {
	Search string `help:"Case-insensitive match on key, email or user name" short:"s"`
	Status string `help:"Status to filter by (all, active, expired, revoked)" default:"all" enum:"all,active,expired,revoked"`
}

func (l *LicensesListCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := newEnv(globals)
	if err != nil {
		return err
	}
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	if err := e.licenses.Load(ctx); err != nil {
		return err
	}

	e.licenses.SetFilter(l.Search, license.ParseStatusFilter(l.Status))
	rows := e.licenses.Rows(e.now(), e.loc)
	if len(rows) == 0 {
		e.printf("No licenses match.\n")
		return nil
	}
	printLicenseRows(e, rows, true)
	return nil
}

type LicensesCreateCmd struct {
	Name  string `help:"User name" required:""`
	Email string `help:"User email" required:""`
	Days  int    `help:"Validity in days" default:"365"`
	Notes string `help:"Free-form notes"`
}

func (c *LicensesCreateCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := newEnv(globals)
	if err != nil {
		return err
	}
	if err := e.requireSession(ctx); err != nil {
		return err
	}

	if err := e.licenses.Load(ctx); err != nil {
		return err
	}
	before := licenseKeys(e.licenses)
	req := license.CreateRequest{UserName: c.Name, UserEmail: c.Email, DurationDays: c.Days, Notes: c.Notes}
	if err := e.licenses.Create(ctx, req); err != nil {
		return err
	}

	for _, l := range e.licenses.Snapshot().Licenses {
		if _, seen := before[l.LicenseKey]; !seen && l.UserEmail == c.Email {
			e.printf("Created %s for %s, expires %s.\n", l.LicenseKey, l.UserEmail, l.ExpiresAt.Format(service.DateLayout, e.loc))
			return nil
		}
	}
	e.printf("License created for %s.\n", c.Email)
	return nil
}

type LicensesUpdateCmd struct {
	Key    string  `arg:"" help:"License key"`
	Name   *string `help:"New user name"`
	Email  *string `help:"New user email"`
	Notes  *string `help:"New notes"`
	Active *bool   `help:"Set the active flag (--active=false deactivates)"`
}

func (u *LicensesUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := newEnv(globals)
	if err != nil {
		return err
	}
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	if err := e.licenses.Load(ctx); err != nil {
		return err
	}
	if err := e.licenses.OpenEdit(u.Key); err != nil {
		return err
	}

	req := e.licenses.Snapshot().EditDraft
	if u.Name != nil {
		req.UserName = *u.Name
	}
	if u.Email != nil {
		req.UserEmail = *u.Email
	}
	if u.Notes != nil {
		req.Notes = *u.Notes
	}
	if u.Active != nil {
		req.IsActive = *u.Active
	}

	if err := e.licenses.Update(ctx, u.Key, req); err != nil {
		return err
	}
	e.printf("Updated %s.\n", u.Key)
	return nil
}

type LicensesRevokeCmd struct {
	Key string `arg:"" help:"License key"`
	Yes bool   `help:"Confirm the revocation" short:"y"`
}

func (r *LicensesRevokeCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := newEnv(globals)
	if err != nil {
		return err
	}
	if !r.Yes {
		return fmt.Errorf("%w (pass --yes)", e.licenses.Revoke(ctx, r.Key, false))
	}
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	if err := e.licenses.Revoke(ctx, r.Key, true); err != nil {
		return err
	}
	e.printf("Revoked %s.\n", r.Key)
	return nil
}

type LicensesDeleteCmd struct {
	Key string `arg:"" help:"License key"`
	Yes bool   `help:"Confirm the deletion" short:"y"`
}

func (d *LicensesDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := newEnv(globals)
	if err != nil {
		return err
	}
	if !d.Yes {
		return fmt.Errorf("%w (pass --yes)", e.licenses.Delete(ctx, d.Key, false))
	}
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	if err := e.licenses.Delete(ctx, d.Key, true); err != nil {
		return err
	}
	e.printf("Deleted %s.\n", d.Key)
	return nil
}

func licenseKeys(svc *service.LicenseService) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, l := range svc.Snapshot().Licenses {
		keys[l.LicenseKey] = struct{}{}
	}
	return keys
}

func printLicenseRows(e *env, rows []service.LicenseRow, fullKey bool) {
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tUSER\tEMAIL\tSTATUS\tCREATED\tEXPIRES")
	for _, r := range rows {
		key := r.ShortKey
		if fullKey {
			key = r.License.LicenseKey
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", key, r.License.UserName, r.License.UserEmail, r.StatusLabel, r.CreatedOn, r.ExpiresOn)
	}
	w.Flush()
}
