// Package apperr classifies failures so the HTTP layer can map them to a
// status without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	// KindValidation is a local precondition failure; nothing remote ran.
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	// KindRemote is a store or storage call failure, including mid-saga
	// failures that were already compensated.
	KindRemote   Kind = "remote"
	KindInternal Kind = "internal"
)

// ErrNotFound is returned by store adapters when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller lacks the required role.
var ErrForbidden = errors.New("forbidden")

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Validation(op string, err error) error {
	return New(KindValidation, op, err)
}

func Validationf(op, format string, args ...any) error {
	return New(KindValidation, op, fmt.Errorf(format, args...))
}

// Remote wraps a store/storage failure. A wrapped ErrNotFound or
// ErrForbidden keeps its more specific kind.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return New(KindNotFound, op, err)
	case errors.Is(err, ErrForbidden):
		return New(KindForbidden, op, err)
	}
	return New(KindRemote, op, err)
}

func Internal(op string, err error) error {
	return New(KindInternal, op, err)
}

// KindOf reports the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
