package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type ProblemRepository interface {
	Create(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	FindByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Problem, error)
	LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Problem, error)
	FindWithAuthor(ctx context.Context, tx *sql.Tx, id int64) (*model.ProblemWithAuthor, error)
	Update(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error

	Search(ctx context.Context, tx *sql.Tx, filter model.ProblemFilter) ([]model.Problem, error)
	// ListByUser returns the user's problems, newest first. limit <= 0 means all.
	ListByUser(ctx context.Context, tx *sql.Tx, userID int64, limit int) ([]model.Problem, error)
	ListByResource(ctx context.Context, tx *sql.Tx, resourceID int64) ([]model.ProblemSummary, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemColumns = `p.problem_id, p.user_id, p.title, p.description, p.problem_type, p.created_at, p.resolved`

func scanProblem(row rowScanner) (*model.Problem, error) {
	p := &model.Problem{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.ProblemType, &p.CreatedAt, &p.Resolved); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProblemRepository) Create(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `INSERT INTO problems (user_id, title, description, problem_type, resolved)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING problem_id, created_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query, p.UserID, p.Title, p.Description, p.ProblemType, p.Resolved).
		Scan(&p.ID, &p.CreatedAt)
	return classify("pgProblemRepository.Create", err)
}

func (r *pgProblemRepository) FindByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems p WHERE p.problem_id = $1`
	p, err := scanProblem(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("pgProblemRepository.FindByID", "problem", id, err)
	}
	return p, nil
}

func (r *pgProblemRepository) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems p WHERE p.problem_id = $1 FOR UPDATE`
	p, err := scanProblem(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("pgProblemRepository.LockByID", "problem", id, err)
	}
	return p, nil
}

// FindWithAuthor loads the problem and its owner's public fields in one join.
func (r *pgProblemRepository) FindWithAuthor(ctx context.Context, tx *sql.Tx, id int64) (*model.ProblemWithAuthor, error) {
	query := `
        SELECT ` + problemColumns + `, u.user_id, u.username
        FROM problems p
        JOIN users u ON u.user_id = p.user_id
        WHERE p.problem_id = $1`

	pw := &model.ProblemWithAuthor{}
	p := &pw.Problem
	err := conn(r.db, tx).QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.ProblemType, &p.CreatedAt, &p.Resolved,
		&pw.Author.ID, &pw.Author.Username,
	)
	if err != nil {
		return nil, notFoundOr("pgProblemRepository.FindWithAuthor", "problem", id, err)
	}
	return pw, nil
}

func (r *pgProblemRepository) Update(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `UPDATE problems SET
                title = $1, description = $2, problem_type = $3, resolved = $4
              WHERE problem_id = $5`
	res, err := conn(r.db, tx).ExecContext(ctx, query, p.Title, p.Description, p.ProblemType, p.Resolved, p.ID)
	if err != nil {
		return classify("pgProblemRepository.Update", err)
	}
	return expectAffected("pgProblemRepository.Update", res, common.NotFound("problem", p.ID))
}

func (r *pgProblemRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM problems WHERE problem_id = $1`, id)
	if err != nil {
		return classify("pgProblemRepository.Delete", err)
	}
	return expectAffected("pgProblemRepository.Delete", res, common.NotFound("problem", id))
}

// Search builds its WHERE clause from the non-empty filter fields.
func (r *pgProblemRepository) Search(ctx context.Context, tx *sql.Tx, f model.ProblemFilter) ([]model.Problem, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + problemColumns + ` FROM problems p`)

	var conditions []string
	var args []interface{}
	argID := 1

	if f.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(p.title) LIKE $%d OR LOWER(COALESCE(p.description, '')) LIKE $%d)", argID, argID))
		args = append(args, likePattern(f.Keyword))
		argID++
	}

	if f.Type != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(p.problem_type) = LOWER($%d)", argID))
		args = append(args, f.Type)
		argID++
	}

	if f.Tag != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
            SELECT 1 FROM problem_tags pt JOIN tags t ON t.tag_id = pt.tag_id
            WHERE pt.problem_id = p.problem_id AND LOWER(t.tag_name) = LOWER($%d))`, argID))
		args = append(args, f.Tag)
		argID++
	}

	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY p.created_at DESC, p.problem_id DESC")

	return r.queryProblems(ctx, tx, "pgProblemRepository.Search", query.String(), args...)
}

func (r *pgProblemRepository) ListByUser(ctx context.Context, tx *sql.Tx, userID int64, limit int) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems p
	          WHERE p.user_id = $1
	          ORDER BY p.created_at DESC, p.problem_id DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return r.queryProblems(ctx, tx, "pgProblemRepository.ListByUser", query, args...)
}

func (r *pgProblemRepository) ListByResource(ctx context.Context, tx *sql.Tx, resourceID int64) ([]model.ProblemSummary, error) {
	query := `SELECT p.problem_id, p.title, p.resolved, p.created_at
              FROM problems p
              JOIN problem_resources pr ON pr.problem_id = p.problem_id
              WHERE pr.resource_id = $1
              ORDER BY p.created_at DESC, p.problem_id DESC`
	rows, err := conn(r.db, tx).QueryContext(ctx, query, resourceID)
	if err != nil {
		return nil, classify("pgProblemRepository.ListByResource query", err)
	}
	defer rows.Close()

	summaries := []model.ProblemSummary{}
	for rows.Next() {
		var s model.ProblemSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Resolved, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ListByResource scan: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListByResource rows.Err: %w", err)
	}
	return summaries, nil
}

func (r *pgProblemRepository) queryProblems(ctx context.Context, tx *sql.Tx, op, query string, args ...interface{}) ([]model.Problem, error) {
	rows, err := conn(r.db, tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op+" query", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		problems = append(problems, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows.Err: %w", op, err)
	}
	return problems, nil
}

// likePattern lower-cases keyword and escapes LIKE wildcards so it matches as
// a literal substring.
func likePattern(keyword string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(keyword))
	return "%" + escaped + "%"
}
