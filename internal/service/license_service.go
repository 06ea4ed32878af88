package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"github.com/makkenzo/license-admin-console/internal/util"
	"go.uber.org/zap"
)

const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"

	listKeyWidth = 16
)

type Modal string

const (
	ModalNone    Modal = ""
	ModalCreate  Modal = "create"
	ModalEdit    Modal = "edit"
	ModalDetails Modal = "details"
)

// LicenseState is a snapshot of the licenses view.
type LicenseState struct {
	Loaded       bool
	Licenses     []license.License
	Search       string
	StatusFilter license.Status
	Modal        Modal
	Selected     *license.License
	CreateDraft  license.CreateRequest
	EditDraft    license.UpdateRequest
}

// LicenseRow is one rendered line of the licenses table.
type LicenseRow struct {
	License     license.License
	Status      license.Status
	StatusLabel string
	ShortKey    string
	ExpiresOn   string
	CreatedOn   string
}

func NewLicenseRow(l license.License, now time.Time, keyWidth int, layout string, loc *time.Location) LicenseRow {
	status := license.DeriveStatus(l, now)
	return LicenseRow{
		License:     l,
		Status:      status,
		StatusLabel: status.Label(),
		ShortKey:    util.TruncateKey(l.LicenseKey, keyWidth),
		ExpiresOn:   l.ExpiresAt.Format(layout, loc),
		CreatedOn:   l.CreatedAt.Format(layout, loc),
	}
}

// LicenseService is the licenses view-model: the fetched list, the filter
// inputs, the modal forms and the mutations. Writes are never applied
// locally; every successful mutation reloads the list.
type LicenseService struct {
	api      LicenseAPI
	reporter Reporter
	logger   *zap.Logger

	guard loadGuard
	mu    sync.RWMutex
	state LicenseState
}

func NewLicenseService(api LicenseAPI, reporter Reporter, logger *zap.Logger) *LicenseService {
	return &LicenseService{
		api:      api,
		reporter: reporter,
		logger:   logger.Named("LicenseService"),
		state:    LicenseState{StatusFilter: license.StatusAll},
	}
}

func (s *LicenseService) Snapshot() LicenseState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.Licenses = append([]license.License(nil), s.state.Licenses...)
	if s.state.Selected != nil {
		sel := *s.state.Selected
		st.Selected = &sel
	}
	return st
}

// Load fetches the full list. A failure keeps the previous list.
func (s *LicenseService) Load(ctx context.Context) error {
	gen := s.guard.begin()

	list, err := s.api.ListLicenses(ctx)
	if err != nil {
		return s.fail(gen, err)
	}

	applied := s.guard.apply(gen, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state.Licenses = list
		s.state.Loaded = true
	})
	if !applied {
		s.logger.Debug("Dropping stale license list", zap.Uint64("generation", gen))
		return nil
	}

	s.logger.Debug("License list loaded", zap.Int("count", len(list)))
	return nil
}

// EnsureLoaded loads the list the first time the view is shown.
func (s *LicenseService) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.state.Loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Load(ctx)
}

// Reset drops the view state and invalidates in-flight loads.
func (s *LicenseService) Reset() {
	s.guard.invalidate()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = LicenseState{StatusFilter: license.StatusAll}
}

func (s *LicenseService) SetFilter(search string, status license.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Search = search
	s.state.StatusFilter = status
}

// Visible applies the current search and status filter.
func (s *LicenseService) Visible(now time.Time) []license.License {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return license.Filter(s.state.Licenses, s.state.Search, s.state.StatusFilter, now)
}

func (s *LicenseService) Rows(now time.Time, loc *time.Location) []LicenseRow {
	return NewLicenseRows(s.Visible(now), now, loc)
}

// NewLicenseRows renders list the way the licenses table shows it.
func NewLicenseRows(list []license.License, now time.Time, loc *time.Location) []LicenseRow {
	rows := make([]LicenseRow, len(list))
	for i, l := range list {
		rows[i] = NewLicenseRow(l, now, listKeyWidth, DateLayout, loc)
	}
	return rows
}

func (s *LicenseService) find(key string) (license.License, bool) {
	for _, l := range s.state.Licenses {
		if l.LicenseKey == key {
			return l, true
		}
	}
	return license.License{}, false
}

func (s *LicenseService) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Modal = ModalCreate
	s.state.Selected = nil
}

// OpenEdit opens the edit form pre-filled from the selected license.
func (s *LicenseService) OpenEdit(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.find(key)
	if !ok {
		return fmt.Errorf("%w: license %s", ierr.ErrNotFound, key)
	}
	s.state.Modal = ModalEdit
	s.state.Selected = &l
	s.state.EditDraft = license.UpdateRequestFor(l)
	return nil
}

func (s *LicenseService) OpenDetails(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.find(key)
	if !ok {
		return fmt.Errorf("%w: license %s", ierr.ErrNotFound, key)
	}
	s.state.Modal = ModalDetails
	s.state.Selected = &l
	return nil
}

// KeepCreateDraft reopens the create form with values that failed local
// validation.
func (s *LicenseService) KeepCreateDraft(req license.CreateRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Modal = ModalCreate
	s.state.Selected = nil
	s.state.CreateDraft = req
}

func (s *LicenseService) KeepEditDraft(key string, req license.UpdateRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Modal = ModalEdit
	s.state.EditDraft = req
	if l, ok := s.find(key); ok {
		s.state.Selected = &l
	}
}

func (s *LicenseService) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Modal = ModalNone
	s.state.Selected = nil
	s.state.CreateDraft = license.CreateRequest{}
	s.state.EditDraft = license.UpdateRequest{}
}

// Create submits the create form. On failure the form stays open with the
// submitted values.
func (s *LicenseService) Create(ctx context.Context, req license.CreateRequest) error {
	s.KeepCreateDraft(req)

	if _, err := s.api.CreateLicense(ctx, req); err != nil {
		s.reporter.Report(ViewLicenses, err)
		return err
	}

	s.logger.Info("License created", zap.String("user_email", req.UserEmail))
	s.CloseModal()
	s.reload(ctx)
	return nil
}

func (s *LicenseService) Update(ctx context.Context, key string, req license.UpdateRequest) error {
	s.KeepEditDraft(key, req)

	if err := s.api.UpdateLicense(ctx, key, req); err != nil {
		s.reporter.Report(ViewLicenses, err)
		return err
	}

	s.logger.Info("License updated", zap.String("key", key))
	s.CloseModal()
	s.reload(ctx)
	return nil
}

// Revoke requires confirmed to be true; otherwise no request is issued.
func (s *LicenseService) Revoke(ctx context.Context, key string, confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("%w: revoke %s", ierr.ErrNotConfirmed, key)
	}
	if err := s.api.RevokeLicense(ctx, key); err != nil {
		s.reporter.Report(ViewLicenses, err)
		return err
	}

	s.logger.Info("License revoked", zap.String("key", key))
	s.reload(ctx)
	return nil
}

// Delete permanently removes a license. Like Revoke it needs confirmation.
func (s *LicenseService) Delete(ctx context.Context, key string, confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("%w: delete %s", ierr.ErrNotConfirmed, key)
	}
	if err := s.api.DeleteLicense(ctx, key); err != nil {
		s.reporter.Report(ViewLicenses, err)
		return err
	}

	s.logger.Info("License deleted", zap.String("key", key))
	s.reload(ctx)
	return nil
}

// reload refreshes the list after a successful write. Its failure is
// reported by Load and does not turn the write into a failure.
func (s *LicenseService) reload(ctx context.Context) {
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("Reload after mutation failed", zap.Error(err))
	}
}

// fail reports err unless the load was superseded, in which case the failure
// is dropped like a stale result.
func (s *LicenseService) fail(gen uint64, err error) error {
	reported := s.guard.apply(gen, func() { s.reporter.Report(ViewLicenses, err) })
	if !reported {
		s.logger.Debug("Dropping stale license list failure", zap.Uint64("generation", gen), zap.Error(err))
		return nil
	}
	return err
}
