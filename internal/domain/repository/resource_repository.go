package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type ResourceRepository interface {
	Create(ctx context.Context, tx *sql.Tx, resource *model.Resource) error
	FindByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Resource, error)
	LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Resource, error)
	Update(ctx context.Context, tx *sql.Tx, resource *model.Resource) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
	// RecordVisit increments visit_count and stamps last_visited_at.
	RecordVisit(ctx context.Context, tx *sql.Tx, id int64, at time.Time) (*model.Resource, error)

	Search(ctx context.Context, tx *sql.Tx, filter model.ResourceFilter) ([]model.Resource, error)
	ListByUser(ctx context.Context, tx *sql.Tx, userID int64) ([]model.Resource, error)
	ListLinkedToProblem(ctx context.Context, tx *sql.Tx, problemID int64) ([]model.LinkedResource, error)
	// ListBySolutions returns the resources of each solution, keyed by solution id.
	ListBySolutions(ctx context.Context, tx *sql.Tx, solutionIDs []int64) (map[int64][]model.Resource, error)
}

type pgResourceRepository struct {
	db *sql.DB
}

func NewPgResourceRepository(db *sql.DB) ResourceRepository {
	return &pgResourceRepository{db: db}
}

const resourceColumns = `r.resource_id, r.user_id, r.url, r.title, r.source_platform, r.content_summary,
       r.usefulness_score, r.visit_count, r.first_visited_at, r.last_visited_at`

// Most recently used first; never-visited rows sort last.
const resourceOrder = ` ORDER BY r.last_visited_at DESC NULLS LAST, r.resource_id DESC`

func resourceDest(r *model.Resource) []any {
	return []any{
		&r.ID, &r.UserID, &r.URL, &r.Title, &r.SourcePlatform, &r.ContentSummary,
		&r.UsefulnessScore, &r.VisitCount, &r.FirstVisitedAt, &r.LastVisitedAt,
	}
}

func scanResource(row rowScanner) (*model.Resource, error) {
	r := &model.Resource{}
	if err := row.Scan(resourceDest(r)...); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *pgResourceRepository) Create(ctx context.Context, tx *sql.Tx, res *model.Resource) error {
	query := `INSERT INTO resources (user_id, url, title, source_platform, content_summary, usefulness_score,
                                     visit_count, first_visited_at, last_visited_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING resource_id`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		res.UserID, res.URL, res.Title, res.SourcePlatform, res.ContentSummary, res.UsefulnessScore,
		res.VisitCount, res.FirstVisitedAt, res.LastVisitedAt,
	).Scan(&res.ID)
	return classify("pgResourceRepository.Create", err)
}

func (r *pgResourceRepository) FindByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources r WHERE r.resource_id = $1`
	res, err := scanResource(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("pgResourceRepository.FindByID", "resource", id, err)
	}
	return res, nil
}

func (r *pgResourceRepository) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources r WHERE r.resource_id = $1 FOR UPDATE`
	res, err := scanResource(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("pgResourceRepository.LockByID", "resource", id, err)
	}
	return res, nil
}

func (r *pgResourceRepository) Update(ctx context.Context, tx *sql.Tx, res *model.Resource) error {
	query := `UPDATE resources SET
                url = $1, title = $2, source_platform = $3, content_summary = $4, usefulness_score = $5
              WHERE resource_id = $6`
	result, err := conn(r.db, tx).ExecContext(ctx, query,
		res.URL, res.Title, res.SourcePlatform, res.ContentSummary, res.UsefulnessScore, res.ID)
	if err != nil {
		return classify("pgResourceRepository.Update", err)
	}
	return expectAffected("pgResourceRepository.Update", result, common.NotFound("resource", res.ID))
}

func (r *pgResourceRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	result, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM resources WHERE resource_id = $1`, id)
	if err != nil {
		return classify("pgResourceRepository.Delete", err)
	}
	return expectAffected("pgResourceRepository.Delete", result, common.NotFound("resource", id))
}

func (r *pgResourceRepository) RecordVisit(ctx context.Context, tx *sql.Tx, id int64, at time.Time) (*model.Resource, error) {
	query := `UPDATE resources r SET visit_count = r.visit_count + 1, last_visited_at = $2
              WHERE r.resource_id = $1
              RETURNING ` + resourceColumns
	res, err := scanResource(conn(r.db, tx).QueryRowContext(ctx, query, id, at))
	if err != nil {
		return nil, notFoundOr("pgResourceRepository.RecordVisit", "resource", id, err)
	}
	return res, nil
}

func (r *pgResourceRepository) Search(ctx context.Context, tx *sql.Tx, f model.ResourceFilter) ([]model.Resource, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + resourceColumns + ` FROM resources r`)

	var conditions []string
	var args []interface{}
	argID := 1

	if f.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(COALESCE(r.title, '')) LIKE $%d OR LOWER(r.url) LIKE $%d OR LOWER(COALESCE(r.content_summary, '')) LIKE $%d)",
			argID, argID, argID))
		args = append(args, likePattern(f.Keyword))
		argID++
	}

	if f.Platform != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(r.source_platform) = LOWER($%d)", argID))
		args = append(args, f.Platform)
		argID++
	}

	if f.Tag != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
            SELECT 1 FROM resource_tags rt JOIN tags t ON t.tag_id = rt.tag_id
            WHERE rt.resource_id = r.resource_id AND LOWER(t.tag_name) = LOWER($%d))`, argID))
		args = append(args, f.Tag)
		argID++
	}

	if f.MinScore != nil {
		conditions = append(conditions, fmt.Sprintf("r.usefulness_score >= $%d", argID))
		args = append(args, *f.MinScore)
		argID++
	}

	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(resourceOrder)

	return r.queryResources(ctx, tx, "pgResourceRepository.Search", query.String(), args...)
}

func (r *pgResourceRepository) ListByUser(ctx context.Context, tx *sql.Tx, userID int64) ([]model.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources r WHERE r.user_id = $1` + resourceOrder
	return r.queryResources(ctx, tx, "pgResourceRepository.ListByUser", query, userID)
}

// ListLinkedToProblem annotates each resource with the attributes of its problem link.
func (r *pgResourceRepository) ListLinkedToProblem(ctx context.Context, tx *sql.Tx, problemID int64) ([]model.LinkedResource, error) {
	query := `SELECT ` + resourceColumns + `, pr.relevance_score, pr.contribution_type
              FROM resources r
              JOIN problem_resources pr ON pr.resource_id = r.resource_id
              WHERE pr.problem_id = $1
              ORDER BY pr.added_at ASC, r.resource_id ASC`
	rows, err := conn(r.db, tx).QueryContext(ctx, query, problemID)
	if err != nil {
		return nil, classify("pgResourceRepository.ListLinkedToProblem query", err)
	}
	defer rows.Close()

	linked := []model.LinkedResource{}
	for rows.Next() {
		var lr model.LinkedResource
		dest := append(resourceDest(&lr.Resource), &lr.RelevanceScore, &lr.ContributionType)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("pgResourceRepository.ListLinkedToProblem scan: %w", err)
		}
		linked = append(linked, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgResourceRepository.ListLinkedToProblem rows.Err: %w", err)
	}
	return linked, nil
}

// ListBySolutions loads the resources of many solutions in one query. Every
// requested id is present in the result, with an empty slice when unlinked.
func (r *pgResourceRepository) ListBySolutions(ctx context.Context, tx *sql.Tx, solutionIDs []int64) (map[int64][]model.Resource, error) {
	bySolution := make(map[int64][]model.Resource, len(solutionIDs))
	for _, id := range solutionIDs {
		bySolution[id] = []model.Resource{}
	}
	if len(solutionIDs) == 0 {
		return bySolution, nil
	}

	query := `SELECT sr.solution_id, ` + resourceColumns + `
              FROM solution_resources sr
              JOIN resources r ON r.resource_id = sr.resource_id
              WHERE sr.solution_id = ANY($1)` + resourceOrder
	rows, err := conn(r.db, tx).QueryContext(ctx, query, solutionIDs)
	if err != nil {
		return nil, classify("pgResourceRepository.ListBySolutions query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var solutionID int64
		var res model.Resource
		dest := append([]any{&solutionID}, resourceDest(&res)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("pgResourceRepository.ListBySolutions scan: %w", err)
		}
		bySolution[solutionID] = append(bySolution[solutionID], res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgResourceRepository.ListBySolutions rows.Err: %w", err)
	}
	return bySolution, nil
}

func (r *pgResourceRepository) queryResources(ctx context.Context, tx *sql.Tx, op, query string, args ...interface{}) ([]model.Resource, error) {
	rows, err := conn(r.db, tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op+" query", err)
	}
	defer rows.Close()

	resources := []model.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		resources = append(resources, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows.Err: %w", op, err)
	}
	return resources, nil
}
