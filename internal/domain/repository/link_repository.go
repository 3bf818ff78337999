package repository

import (
	"context"
	"database/sql"
	"fmt"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

// LinkRepository stores the association rows. Every attach is a single
// INSERT ... ON CONFLICT statement, so concurrent attaches on one key
// converge to one row.
type LinkRepository interface {
	AttachProblemTag(ctx context.Context, tx *sql.Tx, link model.ProblemTag) error
	DetachProblemTag(ctx context.Context, tx *sql.Tx, problemID, tagID int64) error

	UpsertResourceTag(ctx context.Context, tx *sql.Tx, link model.ResourceTag) error
	DetachResourceTag(ctx context.Context, tx *sql.Tx, resourceID, tagID int64) error

	UpsertProblemResource(ctx context.Context, tx *sql.Tx, link model.ProblemResource) error
	DetachProblemResource(ctx context.Context, tx *sql.Tx, problemID, resourceID int64) error

	AttachSolutionResource(ctx context.Context, tx *sql.Tx, link model.SolutionResource) error
	DetachSolutionResource(ctx context.Context, tx *sql.Tx, solutionID, resourceID int64) error

	// CreateRelation fails with a conflict when the ordered pair already exists.
	CreateRelation(ctx context.Context, tx *sql.Tx, rel model.ProblemRelation) error
	DeleteRelation(ctx context.Context, tx *sql.Tx, fromProblemID, toProblemID int64) error
	ListRelationsFrom(ctx context.Context, tx *sql.Tx, problemID int64) ([]model.ProblemRelation, error)
	ListRelationsTo(ctx context.Context, tx *sql.Tx, problemID int64) ([]model.ProblemRelation, error)
}

type pgLinkRepository struct {
	db *sql.DB
}

func NewPgLinkRepository(db *sql.DB) LinkRepository {
	return &pgLinkRepository{db: db}
}

func (r *pgLinkRepository) AttachProblemTag(ctx context.Context, tx *sql.Tx, l model.ProblemTag) error {
	query := `INSERT INTO problem_tags (problem_id, tag_id) VALUES ($1, $2)
              ON CONFLICT (problem_id, tag_id) DO NOTHING`
	_, err := conn(r.db, tx).ExecContext(ctx, query, l.ProblemID, l.TagID)
	return classify("pgLinkRepository.AttachProblemTag", err)
}

func (r *pgLinkRepository) DetachProblemTag(ctx context.Context, tx *sql.Tx, problemID, tagID int64) error {
	return r.detach(ctx, tx, "pgLinkRepository.DetachProblemTag",
		`DELETE FROM problem_tags WHERE problem_id = $1 AND tag_id = $2`,
		fmt.Errorf("tag %d is not attached to problem %d: %w", tagID, problemID, common.ErrNotFound),
		problemID, tagID)
}

func (r *pgLinkRepository) UpsertResourceTag(ctx context.Context, tx *sql.Tx, l model.ResourceTag) error {
	query := `INSERT INTO resource_tags (resource_id, tag_id, confidence) VALUES ($1, $2, $3)
              ON CONFLICT (resource_id, tag_id) DO UPDATE SET confidence = EXCLUDED.confidence`
	_, err := conn(r.db, tx).ExecContext(ctx, query, l.ResourceID, l.TagID, l.Confidence)
	return classify("pgLinkRepository.UpsertResourceTag", err)
}

func (r *pgLinkRepository) DetachResourceTag(ctx context.Context, tx *sql.Tx, resourceID, tagID int64) error {
	return r.detach(ctx, tx, "pgLinkRepository.DetachResourceTag",
		`DELETE FROM resource_tags WHERE resource_id = $1 AND tag_id = $2`,
		fmt.Errorf("tag %d is not attached to resource %d: %w", tagID, resourceID, common.ErrNotFound),
		resourceID, tagID)
}

func (r *pgLinkRepository) UpsertProblemResource(ctx context.Context, tx *sql.Tx, l model.ProblemResource) error {
	query := `INSERT INTO problem_resources (problem_id, resource_id, relevance_score, contribution_type)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (problem_id, resource_id) DO UPDATE SET
                relevance_score = EXCLUDED.relevance_score,
                contribution_type = EXCLUDED.contribution_type`
	_, err := conn(r.db, tx).ExecContext(ctx, query, l.ProblemID, l.ResourceID, l.RelevanceScore, l.ContributionType)
	return classify("pgLinkRepository.UpsertProblemResource", err)
}

func (r *pgLinkRepository) DetachProblemResource(ctx context.Context, tx *sql.Tx, problemID, resourceID int64) error {
	return r.detach(ctx, tx, "pgLinkRepository.DetachProblemResource",
		`DELETE FROM problem_resources WHERE problem_id = $1 AND resource_id = $2`,
		fmt.Errorf("resource %d is not attached to problem %d: %w", resourceID, problemID, common.ErrNotFound),
		problemID, resourceID)
}

func (r *pgLinkRepository) AttachSolutionResource(ctx context.Context, tx *sql.Tx, l model.SolutionResource) error {
	query := `INSERT INTO solution_resources (solution_id, resource_id) VALUES ($1, $2)
              ON CONFLICT (solution_id, resource_id) DO NOTHING`
	_, err := conn(r.db, tx).ExecContext(ctx, query, l.SolutionID, l.ResourceID)
	return classify("pgLinkRepository.AttachSolutionResource", err)
}

func (r *pgLinkRepository) DetachSolutionResource(ctx context.Context, tx *sql.Tx, solutionID, resourceID int64) error {
	return r.detach(ctx, tx, "pgLinkRepository.DetachSolutionResource",
		`DELETE FROM solution_resources WHERE solution_id = $1 AND resource_id = $2`,
		fmt.Errorf("resource %d is not attached to solution %d: %w", resourceID, solutionID, common.ErrNotFound),
		solutionID, resourceID)
}

func (r *pgLinkRepository) CreateRelation(ctx context.Context, tx *sql.Tx, rel model.ProblemRelation) error {
	query := `INSERT INTO problem_relations (from_problem_id, to_problem_id, relation_type, strength)
              VALUES ($1, $2, $3, $4)`
	_, err := conn(r.db, tx).ExecContext(ctx, query, rel.FromProblemID, rel.ToProblemID, rel.RelationType, rel.Strength)
	return classify("pgLinkRepository.CreateRelation", err)
}

func (r *pgLinkRepository) DeleteRelation(ctx context.Context, tx *sql.Tx, fromProblemID, toProblemID int64) error {
	return r.detach(ctx, tx, "pgLinkRepository.DeleteRelation",
		`DELETE FROM problem_relations WHERE from_problem_id = $1 AND to_problem_id = $2`,
		fmt.Errorf("relation %d -> %d %w", fromProblemID, toProblemID, common.ErrNotFound),
		fromProblemID, toProblemID)
}

func (r *pgLinkRepository) ListRelationsFrom(ctx context.Context, tx *sql.Tx, problemID int64) ([]model.ProblemRelation, error) {
	query := `SELECT from_problem_id, to_problem_id, relation_type, strength
              FROM problem_relations WHERE from_problem_id = $1
              ORDER BY to_problem_id ASC`
	return r.queryRelations(ctx, tx, "pgLinkRepository.ListRelationsFrom", query, problemID)
}

func (r *pgLinkRepository) ListRelationsTo(ctx context.Context, tx *sql.Tx, problemID int64) ([]model.ProblemRelation, error) {
	query := `SELECT from_problem_id, to_problem_id, relation_type, strength
              FROM problem_relations WHERE to_problem_id = $1
              ORDER BY from_problem_id ASC`
	return r.queryRelations(ctx, tx, "pgLinkRepository.ListRelationsTo", query, problemID)
}

func (r *pgLinkRepository) detach(ctx context.Context, tx *sql.Tx, op, query string, notFound error, args ...interface{}) error {
	res, err := conn(r.db, tx).ExecContext(ctx, query, args...)
	if err != nil {
		return classify(op, err)
	}
	return expectAffected(op, res, notFound)
}

func (r *pgLinkRepository) queryRelations(ctx context.Context, tx *sql.Tx, op, query string, args ...interface{}) ([]model.ProblemRelation, error) {
	rows, err := conn(r.db, tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op+" query", err)
	}
	defer rows.Close()

	relations := []model.ProblemRelation{}
	for rows.Next() {
		var rel model.ProblemRelation
		if err := rows.Scan(&rel.FromProblemID, &rel.ToProblemID, &rel.RelationType, &rel.Strength); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		relations = append(relations, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows.Err: %w", op, err)
	}
	return relations, nil
}
