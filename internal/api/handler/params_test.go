package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestIDParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "42", want: 42},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "problemID", tt.raw)
			got, err := idParam(r, "problemID")
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrBadRequest)
				assert.Contains(t, err.Error(), "invalid problem_id")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONName(t *testing.T) {
	assert.Equal(t, "problem_id", jsonName("problemID"))
	assert.Equal(t, "to_problem_id", jsonName("toProblemID"))
	assert.Equal(t, "tag_id", jsonName("tagID"))
	assert.Equal(t, "id", jsonName("ID"))
	assert.Equal(t, "min_score", jsonName("minScore"))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ada"}`))
	require.NoError(t, decodeJSON(r, &dst))
	assert.Equal(t, "ada", dst.Name)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"truncated", `{"name":`, "request body is not valid JSON: bad request"},
		{"empty", ``, "request body is required: bad request"},
		{"wrong type", `{"score":"high"}`, "score must be a number: bad request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := decodeJSON(r, &dst)
			require.ErrorIs(t, err, common.ErrBadRequest)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestDecodePatch_EmptyBodyIsEmptyPatch(t *testing.T) {
	var patch model.ProblemPatch

	r := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(""))
	require.NoError(t, decodePatch(r, &patch))
	assert.True(t, patch.IsEmpty())

	r = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"title":`))
	assert.ErrorIs(t, decodePatch(r, &patch), common.ErrBadRequest)
}

func TestFloatQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/resources?min_score=3.5", nil)
	got, err := floatQuery(r, "min_score")
	require.NoError(t, err)
	assert.Equal(t, 3.5, *got)

	r = httptest.NewRequest(http.MethodGet, "/resources", nil)
	got, err = floatQuery(r, "min_score")
	require.NoError(t, err)
	assert.Nil(t, got)

	r = httptest.NewRequest(http.MethodGet, "/resources?min_score=high", nil)
	_, err = floatQuery(r, "min_score")
	assert.ErrorIs(t, err, common.ErrBadRequest)
}
