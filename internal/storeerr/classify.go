package storeerr

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Classify wraps a driver error with its kind. Already classified errors and nil
// pass through unchanged; context cancellation is left unclassified.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	kind := classifyKind(err)
	if kind == KindUnknown {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func classifyKind(err error) Kind {
	if errors.Is(err, pgx.ErrNoRows) {
		return KindNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return kindFromSQLState(pgErr.Code)
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return KindTransient
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	return KindUnknown
}

func kindFromSQLState(code string) Kind {
	switch code {
	case "23505":
		return KindConflict
	case "42501":
		return KindPermissionDenied
	case "23502", "23503", "23514":
		return KindValidation
	case "40001", "40P01", "57P01", "53300":
		return KindTransient
	}
	switch {
	case strings.HasPrefix(code, "22"):
		return KindValidation
	case strings.HasPrefix(code, "08"):
		return KindTransient
	}
	return KindUnknown
}
