package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NotFound("problem", 7), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("user", 1)), http.StatusNotFound},
		{"conflict", Conflict("email"), http.StatusConflict},
		{"invalid", Invalid("strength must be between 0 and 1"), http.StatusBadRequest},
		{"bad request", ErrBadRequest, http.StatusBadRequest},
		{"unclassified unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"unclassified check violation", &pgconn.PgError{Code: "23514"}, http.StatusBadRequest},
		{"other pg error", &pgconn.PgError{Code: "08006"}, http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "problem 7 not found", NotFound("problem", 7).Error())
	assert.Equal(t, "tag_name already exists", Conflict("tag_name").Error())
	assert.Equal(t, "from and to must differ: invalid argument", Invalid("from and to must differ").Error())
}

func TestClientMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid", Invalid("relevance_score must be <= 1"), "relevance_score must be <= 1"},
		{"wrapped invalid", fmt.Errorf("attach: %w", Invalid("tag_id is required")), "attach: tag_id is required"},
		{"bad request", fmt.Errorf("invalid problem_id %q: %w", "abc", ErrBadRequest), `invalid problem_id "abc"`},
		{"bare sentinel", ErrBadRequest, "bad request"},
		{"not found keeps its text", NotFound("tag", 3), "tag 3 not found"},
		{"conflict keeps its text", Conflict("email"), "email already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientMessage(tt.err))
		})
	}
}
