package repository

import (
	"context"
	"database/sql"
	"fmt"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type TagRepository interface {
	Create(ctx context.Context, tx *sql.Tx, tag *model.Tag) error
	FindByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Tag, error)
	LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Tag, error)
	Update(ctx context.Context, tx *sql.Tx, tag *model.Tag) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error

	List(ctx context.Context, tx *sql.Tx) ([]model.Tag, error)
	ListByProblem(ctx context.Context, tx *sql.Tx, problemID int64) ([]model.Tag, error)
	ListByResource(ctx context.Context, tx *sql.Tx, resourceID int64) ([]model.Tag, error)
}

type pgTagRepository struct {
	db *sql.DB
}

func NewPgTagRepository(db *sql.DB) TagRepository {
	return &pgTagRepository{db: db}
}

const tagColumns = `t.tag_id, t.tag_name, t.category, t.description`

func scanTag(row rowScanner) (*model.Tag, error) {
	t := &model.Tag{}
	if err := row.Scan(&t.ID, &t.TagName, &t.Category, &t.Description); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *pgTagRepository) Create(ctx context.Context, tx *sql.Tx, t *model.Tag) error {
	query := `INSERT INTO tags (tag_name, category, description) VALUES ($1, $2, $3) RETURNING tag_id`
	err := conn(r.db, tx).QueryRowContext(ctx, query, t.TagName, t.Category, t.Description).Scan(&t.ID)
	return classify("pgTagRepository.Create", err)
}

func (r *pgTagRepository) FindByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags t WHERE t.tag_id = $1`
	t, err := scanTag(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("pgTagRepository.FindByID", "tag", id, err)
	}
	return t, nil
}

func (r *pgTagRepository) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags t WHERE t.tag_id = $1 FOR UPDATE`
	t, err := scanTag(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("pgTagRepository.LockByID", "tag", id, err)
	}
	return t, nil
}

func (r *pgTagRepository) Update(ctx context.Context, tx *sql.Tx, t *model.Tag) error {
	query := `UPDATE tags SET tag_name = $1, category = $2, description = $3 WHERE tag_id = $4`
	res, err := conn(r.db, tx).ExecContext(ctx, query, t.TagName, t.Category, t.Description, t.ID)
	if err != nil {
		return classify("pgTagRepository.Update", err)
	}
	return expectAffected("pgTagRepository.Update", res, common.NotFound("tag", t.ID))
}

func (r *pgTagRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM tags WHERE tag_id = $1`, id)
	if err != nil {
		return classify("pgTagRepository.Delete", err)
	}
	return expectAffected("pgTagRepository.Delete", res, common.NotFound("tag", id))
}

func (r *pgTagRepository) List(ctx context.Context, tx *sql.Tx) ([]model.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags t ORDER BY t.tag_name ASC`
	return r.queryTags(ctx, tx, "pgTagRepository.List", query)
}

func (r *pgTagRepository) ListByProblem(ctx context.Context, tx *sql.Tx, problemID int64) ([]model.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags t
              JOIN problem_tags pt ON pt.tag_id = t.tag_id
              WHERE pt.problem_id = $1
              ORDER BY t.tag_name ASC`
	return r.queryTags(ctx, tx, "pgTagRepository.ListByProblem", query, problemID)
}

func (r *pgTagRepository) ListByResource(ctx context.Context, tx *sql.Tx, resourceID int64) ([]model.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags t
              JOIN resource_tags rt ON rt.tag_id = t.tag_id
              WHERE rt.resource_id = $1
              ORDER BY t.tag_name ASC`
	return r.queryTags(ctx, tx, "pgTagRepository.ListByResource", query, resourceID)
}

func (r *pgTagRepository) queryTags(ctx context.Context, tx *sql.Tx, op, query string, args ...interface{}) ([]model.Tag, error) {
	rows, err := conn(r.db, tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op+" query", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		tags = append(tags, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows.Err: %w", op, err)
	}
	return tags, nil
}
