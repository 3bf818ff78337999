package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"problem_tracker/internal/common"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// conn returns tx when the caller is inside a transaction, the pool otherwise.
func conn(db *sql.DB, tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return db
}

// Constraint names from the embedded schema, mapped to the field or entity
// reported back to the caller.
var (
	uniqueFields = map[string]string{
		"users_username_key":      "username",
		"users_email_key":         "email",
		"tags_tag_name_key":       "tag_name",
		"problem_tags_pkey":       "problem tag link",
		"resource_tags_pkey":      "resource tag link",
		"problem_resources_pkey":  "problem resource link",
		"solution_resources_pkey": "solution resource link",
		"problem_relations_pkey":  "relation",
	}

	foreignKeyEntities = map[string]string{
		"problems_user_id_fkey":                  "user",
		"resources_user_id_fkey":                 "user",
		"solutions_problem_id_fkey":              "problem",
		"solutions_parent_solution_id_fkey":      "parent solution",
		"problem_tags_problem_id_fkey":           "problem",
		"problem_tags_tag_id_fkey":               "tag",
		"resource_tags_resource_id_fkey":         "resource",
		"resource_tags_tag_id_fkey":              "tag",
		"problem_resources_problem_id_fkey":      "problem",
		"problem_resources_resource_id_fkey":     "resource",
		"solution_resources_solution_id_fkey":    "solution",
		"solution_resources_resource_id_fkey":    "resource",
		"problem_relations_from_problem_id_fkey": "problem",
		"problem_relations_to_problem_id_fkey":   "problem",
	}

	checkMessages = map[string]string{
		"no_self_loop":                     "a solution cannot be its own parent",
		"no_self_relation":                 "a problem cannot be related to itself",
		"solution_success_rate_range":      "success_rate must be between 0 and 100",
		"solution_version_number_min":      "version_number must be >= 1",
		"resource_usefulness_range":        "usefulness_score must be between 0 and 5",
		"resource_visit_count_min":         "visit_count must be >= 1",
		"resource_tag_confidence_range":    "confidence must be between 0 and 1",
		"problem_resource_relevance_range": "relevance_score must be between 0 and 1",
		"problem_relation_strength_range":  "strength must be between 0 and 1",
	}
)

// classify turns a storage error into the common taxonomy. Errors it does not
// recognise are wrapped with op and left for the caller to treat as a server error.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			field, ok := uniqueFields[pgErr.ConstraintName]
			if !ok {
				field = "record"
			}
			return common.Conflict(field)
		case "23503": // foreign_key_violation
			entity, ok := foreignKeyEntities[pgErr.ConstraintName]
			if !ok {
				entity = "referenced row"
			}
			return fmt.Errorf("%s %w", entity, common.ErrNotFound)
		case "23514": // check_violation
			msg, ok := checkMessages[pgErr.ConstraintName]
			if !ok {
				msg = "check constraint " + pgErr.ConstraintName + " violated"
			}
			return common.Invalid("%s", msg)
		case "23502": // not_null_violation
			return common.Invalid("%s is required", pgErr.ColumnName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// notFoundOr maps sql.ErrNoRows to a NotFound naming entity and id, and
// classifies anything else.
func notFoundOr(op, entity string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.NotFound(entity, id)
	}
	return classify(op, err)
}

// expectAffected reports a NotFound when a keyed write touched no rows.
func expectAffected(op string, res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
