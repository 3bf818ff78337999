package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrBadRequest      = errors.New("bad request") // undecodable body or path parameter
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest
	}

	// Storage errors that escaped classification.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return http.StatusConflict
		case "23503":
			return http.StatusNotFound
		case "23514", "23502":
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

// NotFound reports a missing row, e.g. "problem 7 not found".
func NotFound(entity string, id int64) error {
	return fmt.Errorf("%s %d %w", entity, id, ErrNotFound)
}

// Conflict reports a uniqueness violation on field, e.g. "email already exists".
func Conflict(field string) error {
	return fmt.Errorf("%s %w", field, ErrConflict)
}

// Invalid reports a rejected argument.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

// ClientMessage is the text shown to API callers. Invalid and BadRequest
// errors drop their trailing sentinel, so "strength must be <= 1: invalid
// argument" is reported as "strength must be <= 1".
func ClientMessage(err error) string {
	msg := err.Error()
	for _, kind := range []error{ErrInvalidArgument, ErrBadRequest} {
		if errors.Is(err, kind) {
			if trimmed := strings.TrimSuffix(msg, ": "+kind.Error()); trimmed != "" {
				msg = trimmed
			}
		}
	}
	return msg
}
