package apiclient

import (
	"net/http"

	"github.com/makkenzo/license-admin-console/internal/ierr"
)

// Op names a remote operation. Each op carries the message shown when the
// server gives none.
type Op string

const (
	OpLogin         Op = "login"
	OpListLicenses  Op = "list licenses"
	OpCreateLicense Op = "create license"
	OpUpdateLicense Op = "update license"
	OpRevokeLicense Op = "revoke license"
	OpDeleteLicense Op = "delete license"
	OpStats         Op = "stats"
	OpLogs          Op = "logs"
)

var fallbackMessages = map[Op]string{
	OpLogin:         "login failed",
	OpListLicenses:  "failed to fetch licenses",
	OpCreateLicense: "failed to create license",
	OpUpdateLicense: "failed to update license",
	OpRevokeLicense: "failed to revoke license",
	OpDeleteLicense: "failed to delete license",
	OpStats:         "failed to fetch stats",
	OpLogs:          "failed to fetch logs",
}

func (o Op) FallbackMessage() string {
	if msg, ok := fallbackMessages[o]; ok {
		return msg
	}
	return "request failed"
}

// Error is the single failure shape of the client. Transport failures,
// non-2xx responses and envelopes reporting success=false all end up here.
// StatusCode is zero when no response was received.
type Error struct {
	Op         Op
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the ierr category and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.category()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *Error) category() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ierr.ErrUnauthorized
	case http.StatusForbidden:
		return ierr.ErrForbidden
	case http.StatusNotFound:
		return ierr.ErrNotFound
	case http.StatusConflict:
		return ierr.ErrConflict
	default:
		return ierr.ErrRemote
	}
}

func newError(op Op, status int, serverMsg string, cause error) *Error {
	msg := serverMsg
	if msg == "" {
		msg = op.FallbackMessage()
	}
	return &Error{Op: op, StatusCode: status, Message: msg, Err: cause}
}
