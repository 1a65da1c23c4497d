package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

const compilationSelect = `SELECT c.id, c.title, c.pinned,
	COALESCE(array_agg(ce.event_id ORDER BY ce.position) FILTER (WHERE ce.event_id IS NOT NULL), '{}')
	FROM compilations c
	LEFT JOIN compilation_events ce ON ce.compilation_id = c.id`

func scanCompilation(row scanner) (model.Compilation, error) {
	var c model.Compilation
	err := row.Scan(&c.ID, &c.Title, &c.Pinned, &c.EventIDs)
	return c, err
}

// CompilationRepository handles persistence for compilations.
type CompilationRepository struct {
	db *pgxpool.Pool
}

// NewCompilationRepository constructs a CompilationRepository.
func NewCompilationRepository(db *pgxpool.Pool) *CompilationRepository {
	return &CompilationRepository{db: db}
}

// Create inserts c together with its event links.
func (r *CompilationRepository) Create(ctx context.Context, c model.Compilation) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO compilations (id, title, pinned) VALUES ($1, $2, $3)`,
			c.ID, c.Title, c.Pinned,
		)
		if err != nil {
			return mapWriteError("insert compilation", err)
		}
		return linkEvents(ctx, tx, c.ID, c.EventIDs)
	})
}

// Update overwrites c's title, pinned flag and event links.
func (r *CompilationRepository) Update(ctx context.Context, c model.Compilation) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE compilations SET title = $2, pinned = $3 WHERE id = $1`,
			c.ID, c.Title, c.Pinned,
		)
		if err != nil {
			return mapWriteError("update compilation", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM compilation_events WHERE compilation_id = $1`, c.ID); err != nil {
			return fmt.Errorf("unlink events: %w", err)
		}
		return linkEvents(ctx, tx, c.ID, c.EventIDs)
	})
}

func linkEvents(ctx context.Context, tx pgx.Tx, compilationID string, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(eventIDs))
	for i, id := range eventIDs {
		rows = append(rows, []any{compilationID, id, i})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"compilation_events"},
		[]string{"compilation_id", "event_id", "position"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return mapWriteError("link events", err)
	}
	return nil
}

// Delete removes a compilation and its event links.
func (r *CompilationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete compilation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single compilation or ErrNotFound.
func (r *CompilationRepository) GetByID(ctx context.Context, id string) (model.Compilation, error) {
	c, err := scanCompilation(r.db.QueryRow(ctx,
		compilationSelect+` WHERE c.id = $1 GROUP BY c.id`, id))
	if err != nil {
		return model.Compilation{}, mapReadError("get compilation", err)
	}
	return c, nil
}

// List returns a page of compilations, optionally filtered by pinned.
func (r *CompilationRepository) List(ctx context.Context, pinned *bool, page model.Page) ([]model.Compilation, error) {
	var f filter
	if pinned != nil {
		f.where("c.pinned = " + f.arg(*pinned))
	}
	query := compilationSelect + f.String() + ` GROUP BY c.id ORDER BY c.title, c.id` + f.page(page.From, page.Size)

	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	defer rows.Close()

	compilations := []model.Compilation{}
	for rows.Next() {
		c, err := scanCompilation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		compilations = append(compilations, c)
	}
	return compilations, rows.Err()
}
