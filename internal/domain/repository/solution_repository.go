package repository

import (
	"context"
	"database/sql"
	"fmt"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type SolutionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, solution *model.Solution) error
	FindByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Solution, error)
	LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Solution, error)
	Update(ctx context.Context, tx *sql.Tx, solution *model.Solution) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error

	ListByProblem(ctx context.Context, tx *sql.Tx, problemID int64) ([]model.Solution, error)
	ListChildren(ctx context.Context, tx *sql.Tx, parentID int64) ([]model.Solution, error)
	CountChildren(ctx context.Context, tx *sql.Tx, parentID int64) (int, error)
	// ListRecentByOwner returns solutions of any problem owned by userID, newest first.
	ListRecentByOwner(ctx context.Context, tx *sql.Tx, userID int64, limit int) ([]model.Solution, error)
	ListByResource(ctx context.Context, tx *sql.Tx, resourceID int64) ([]model.Solution, error)
}

type pgSolutionRepository struct {
	db *sql.DB
}

func NewPgSolutionRepository(db *sql.DB) SolutionRepository {
	return &pgSolutionRepository{db: db}
}

const solutionColumns = `s.solution_id, s.problem_id, s.parent_solution_id, s.code_snippet, s.explanation,
       s.approach_type, s.improvement_description, s.success_rate, s.branch_type,
       s.version_number, s.created_at`

func scanSolution(row rowScanner) (*model.Solution, error) {
	s := &model.Solution{}
	err := row.Scan(
		&s.ID, &s.ProblemID, &s.ParentSolutionID, &s.CodeSnippet, &s.Explanation,
		&s.ApproachType, &s.ImprovementDescription, &s.SuccessRate, &s.BranchType,
		&s.VersionNumber, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgSolutionRepository) Create(ctx context.Context, tx *sql.Tx, s *model.Solution) error {
	query := `INSERT INTO solutions (problem_id, parent_solution_id, code_snippet, explanation, approach_type,
                                     improvement_description, success_rate, branch_type, version_number)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING solution_id, created_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		s.ProblemID, s.ParentSolutionID, s.CodeSnippet, s.Explanation, s.ApproachType,
		s.ImprovementDescription, s.SuccessRate, s.BranchType, s.VersionNumber,
	).Scan(&s.ID, &s.CreatedAt)
	return classify("pgSolutionRepository.Create", err)
}

func (r *pgSolutionRepository) FindByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions s WHERE s.solution_id = $1`
	s, err := scanSolution(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("pgSolutionRepository.FindByID", "solution", id, err)
	}
	return s, nil
}

func (r *pgSolutionRepository) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions s WHERE s.solution_id = $1 FOR UPDATE`
	s, err := scanSolution(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("pgSolutionRepository.LockByID", "solution", id, err)
	}
	return s, nil
}

func (r *pgSolutionRepository) Update(ctx context.Context, tx *sql.Tx, s *model.Solution) error {
	query := `UPDATE solutions SET
                problem_id = $1, parent_solution_id = $2, code_snippet = $3, explanation = $4,
                approach_type = $5, improvement_description = $6, success_rate = $7,
                branch_type = $8, version_number = $9
              WHERE solution_id = $10`
	res, err := conn(r.db, tx).ExecContext(ctx, query,
		s.ProblemID, s.ParentSolutionID, s.CodeSnippet, s.Explanation,
		s.ApproachType, s.ImprovementDescription, s.SuccessRate,
		s.BranchType, s.VersionNumber, s.ID,
	)
	if err != nil {
		return classify("pgSolutionRepository.Update", err)
	}
	return expectAffected("pgSolutionRepository.Update", res, common.NotFound("solution", s.ID))
}

// Delete removes the solution. Its children keep existing with a NULL parent.
func (r *pgSolutionRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM solutions WHERE solution_id = $1`, id)
	if err != nil {
		return classify("pgSolutionRepository.Delete", err)
	}
	return expectAffected("pgSolutionRepository.Delete", res, common.NotFound("solution", id))
}

func (r *pgSolutionRepository) ListByProblem(ctx context.Context, tx *sql.Tx, problemID int64) ([]model.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions s
              WHERE s.problem_id = $1
              ORDER BY s.created_at DESC, s.solution_id DESC`
	return r.querySolutions(ctx, tx, "pgSolutionRepository.ListByProblem", query, problemID)
}

func (r *pgSolutionRepository) ListChildren(ctx context.Context, tx *sql.Tx, parentID int64) ([]model.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions s
              WHERE s.parent_solution_id = $1
              ORDER BY s.created_at DESC, s.solution_id DESC`
	return r.querySolutions(ctx, tx, "pgSolutionRepository.ListChildren", query, parentID)
}

func (r *pgSolutionRepository) CountChildren(ctx context.Context, tx *sql.Tx, parentID int64) (int, error) {
	var n int
	err := conn(r.db, tx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM solutions WHERE parent_solution_id = $1`, parentID).Scan(&n)
	if err != nil {
		return 0, classify("pgSolutionRepository.CountChildren", err)
	}
	return n, nil
}

func (r *pgSolutionRepository) ListRecentByOwner(ctx context.Context, tx *sql.Tx, userID int64, limit int) ([]model.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions s
              JOIN problems p ON p.problem_id = s.problem_id
              WHERE p.user_id = $1
              ORDER BY s.created_at DESC, s.solution_id DESC
              LIMIT $2`
	return r.querySolutions(ctx, tx, "pgSolutionRepository.ListRecentByOwner", query, userID, limit)
}

func (r *pgSolutionRepository) ListByResource(ctx context.Context, tx *sql.Tx, resourceID int64) ([]model.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions s
              JOIN solution_resources sr ON sr.solution_id = s.solution_id
              WHERE sr.resource_id = $1
              ORDER BY s.created_at DESC, s.solution_id DESC`
	return r.querySolutions(ctx, tx, "pgSolutionRepository.ListByResource", query, resourceID)
}

func (r *pgSolutionRepository) querySolutions(ctx context.Context, tx *sql.Tx, op, query string, args ...interface{}) ([]model.Solution, error) {
	rows, err := conn(r.db, tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op+" query", err)
	}
	defer rows.Close()

	solutions := []model.Solution{}
	for rows.Next() {
		s, err := scanSolution(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		solutions = append(solutions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows.Err: %w", op, err)
	}
	return solutions, nil
}
