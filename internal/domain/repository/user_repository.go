package repository

import (
	"context"
	"database/sql"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, tx *sql.Tx, user *model.User) error
	FindByID(ctx context.Context, tx *sql.Tx, id int64) (*model.User, error)
	LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.User, error)
	Update(ctx context.Context, tx *sql.Tx, user *model.User) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `user_id, username, email, first_name, last_name, created_at`

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts user and fills in its ID and CreatedAt.
func (r *pgUserRepository) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	query := `INSERT INTO users (username, email, first_name, last_name)
	          VALUES ($1, $2, $3, $4)
	          RETURNING user_id, created_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query, user.Username, user.Email, user.FirstName, user.LastName).
		Scan(&user.ID, &user.CreatedAt)
	return classify("pgUserRepository.Create", err)
}

func (r *pgUserRepository) FindByID(ctx context.Context, tx *sql.Tx, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("pgUserRepository.FindByID", "user", id, err)
	}
	return u, nil
}

// LockByID reads the row with FOR UPDATE so a read-modify-write inside tx is not interleaved.
func (r *pgUserRepository) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 FOR UPDATE`
	u, err := scanUser(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr("pgUserRepository.LockByID", "user", id, err)
	}
	return u, nil
}

func (r *pgUserRepository) Update(ctx context.Context, tx *sql.Tx, user *model.User) error {
	query := `UPDATE users SET username = $1, email = $2, first_name = $3, last_name = $4
	          WHERE user_id = $5`
	res, err := conn(r.db, tx).ExecContext(ctx, query, user.Username, user.Email, user.FirstName, user.LastName, user.ID)
	if err != nil {
		return classify("pgUserRepository.Update", err)
	}
	return expectAffected("pgUserRepository.Update", res, common.NotFound("user", user.ID))
}

// Delete removes the user; the schema cascades to their problems and resources.
func (r *pgUserRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return classify("pgUserRepository.Delete", err)
	}
	return expectAffected("pgUserRepository.Delete", res, common.NotFound("user", id))
}
