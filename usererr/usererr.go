// Package usererr carries the controller's invariant-violation errors: a
// title, free-form context, and a severity that decides how loudly the
// error is reported.
package usererr

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

type Severity int

const (
	Info Severity = iota
	Warn
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Kinds. Compare with errors.Is.
var (
	ErrInvalidJob       = errors.New("invalid job")
	ErrUnregisteredRole = errors.New("unregistered role")
	ErrMissingRole      = errors.New("missing role")
	ErrNullData         = errors.New("null data")
	ErrNullTarget       = errors.New("null job target")
	ErrPanic            = errors.New("recovered panic")
)

// UserError is a structured invariant violation.
type UserError struct {
	Title    string
	Context  string
	Severity Severity
	Kind     error
}

func New(title, context string, sev Severity) *UserError {
	return &UserError{Title: title, Context: context, Severity: sev}
}

// Of builds an error tagged with one of the kind sentinels.
func Of(kind error, sev Severity, title, context string) *UserError {
	return &UserError{Title: title, Context: context, Severity: sev, Kind: kind}
}

func (e *UserError) Error() string {
	if e.Context == "" {
		return e.Title
	}
	return e.Title + ": " + e.Context
}

func (e *UserError) Unwrap() error { return e.Kind }

// KindName is the short label used for metrics.
func KindName(err error) string {
	for _, k := range []error{ErrInvalidJob, ErrUnregisteredRole, ErrMissingRole, ErrNullData, ErrNullTarget, ErrPanic} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return "other"
}

// SeverityOf returns the severity of err, treating foreign errors as Error.
func SeverityOf(err error) Severity {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Severity
	}
	return Error
}

// FromPanic converts a recovered value into a UserError carrying the stack.
func FromPanic(where string, r any) *UserError {
	return &UserError{
		Title:    fmt.Sprintf("panic in %s: %v", where, r),
		Context:  string(debug.Stack()),
		Severity: Error,
		Kind:     ErrPanic,
	}
}

// Report logs err at the level matching its severity.
func Report(err error, attrs ...any) {
	if err == nil {
		return
	}
	var ue *UserError
	if !errors.As(err, &ue) {
		slog.Error("unhandled error", append(attrs, "error", err)...)
		return
	}
	args := append([]any{"context", ue.Context}, attrs...)
	switch ue.Severity {
	case Info:
		slog.Info(ue.Title, args...)
	case Warn:
		slog.Warn(ue.Title, args...)
	case Fatal:
		slog.Error(ue.Title, append(args, "fatal", true)...)
	default:
		slog.Error(ue.Title, args...)
	}
}
