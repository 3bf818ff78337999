package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"problem_tracker/internal/common"
)

// idParam parses a numeric path parameter. Errors name the parameter the way
// the JSON bodies do, so "problemID" is reported as "problem_id".
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", jsonName(name), raw, common.ErrBadRequest)
	}
	return id, nil
}

// jsonName converts a route parameter such as "toProblemID" to "to_problem_id".
func jsonName(param string) string {
	base, hasID := strings.CutSuffix(param, "ID")
	var b strings.Builder
	for i, c := range base {
		if unicode.IsUpper(c) {
			if i > 0 {
				b.WriteByte('_')
			}
			c = unicode.ToLower(c)
		}
		b.WriteRune(c)
	}
	if hasID {
		if b.Len() > 0 {
			b.WriteByte('_')
		}
		b.WriteString("id")
	}
	return b.String()
}

func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("request body is required: %w", common.ErrBadRequest)
	}
	return bodyError(err)
}

// decodePatch is decodeJSON for partial updates: an empty body is an empty
// patch, which leaves the row unchanged.
func decodePatch(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return bodyError(err)
}

func bodyError(err error) error {
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Errorf("%s must be a %s: %w", typeErr.Field, jsonType(typeErr.Type.Kind().String()), common.ErrBadRequest)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("request body is not valid JSON: %w", common.ErrBadRequest)
	}
	return fmt.Errorf("invalid request body: %w", common.ErrBadRequest)
}

func jsonType(kind string) string {
	switch {
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"), strings.HasPrefix(kind, "float"):
		return "number"
	case kind == "bool":
		return "boolean"
	case kind == "slice", kind == "array":
		return "list"
	case kind == "struct", kind == "map":
		return "object"
	default:
		return kind
	}
}

// floatQuery parses an optional float query parameter; absent means nil.
func floatQuery(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, raw, common.ErrBadRequest)
	}
	return &v, nil
}
