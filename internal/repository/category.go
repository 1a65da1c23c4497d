package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// CategoryRepository handles persistence for categories.
type CategoryRepository struct {
	db *pgxpool.Pool
}

// NewCategoryRepository constructs a CategoryRepository.
func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts c. A taken name yields ErrDuplicate.
func (r *CategoryRepository) Create(ctx context.Context, c model.Category) error {
	_, err := r.db.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, c.ID, c.Name)
	if err != nil {
		return mapWriteError("insert category", err)
	}
	return nil
}

// Update renames c.
func (r *CategoryRepository) Update(ctx context.Context, c model.Category) error {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return mapWriteError("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a category. Categories still used by events yield ErrReferenced.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapWriteError("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single category or ErrNotFound.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (model.Category, error) {
	var c model.Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return model.Category{}, mapReadError("get category", err)
	}
	return c, nil
}

// List returns a page of categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context, page model.Page) ([]model.Category, error) {
	var f filter
	rows, err := r.db.Query(ctx,
		`SELECT id, name FROM categories ORDER BY name, id`+f.page(page.From, page.Size),
		f.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
