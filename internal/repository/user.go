package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`,
		u.ID, u.Name, u.Email,
	)
	if err != nil {
		return mapWriteError("insert user", err)
	}
	return nil
}

// GetByID returns a single user or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		return model.User{}, mapReadError("get user", err)
	}
	return u, nil
}

// List returns a page of users ordered by id, optionally restricted to ids.
func (r *UserRepository) List(ctx context.Context, ids []string, page model.Page) ([]model.User, error) {
	var f filter
	if len(ids) > 0 {
		f.where("id = ANY(" + f.arg(ids) + ")")
	}
	query := `SELECT id, name, email FROM users` + f.String() + ` ORDER BY id` + f.page(page.From, page.Size)

	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Delete removes a user and, by cascade, their events, requests and comments.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapWriteError("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
