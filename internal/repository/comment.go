package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

const commentSelect = `SELECT cm.id, cm.text, cm.event_id, e.title, u.id, u.name, cm.created_at, cm.updated_at
	FROM comments cm
	JOIN events e ON e.id = cm.event_id
	JOIN users u ON u.id = cm.author_id`

func scanComment(row scanner) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.Text, &c.EventID, &c.EventTitle, &c.Author.ID, &c.Author.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func collectComments(rows pgx.Rows) ([]model.Comment, error) {
	defer rows.Close()
	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository constructs a CommentRepository.
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts c.
func (r *CommentRepository) Create(ctx context.Context, c model.Comment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO comments (id, text, event_id, author_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Text, c.EventID, c.Author.ID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert comment", err)
	}
	return nil
}

// UpdateText replaces the text of a comment.
func (r *CommentRepository) UpdateText(ctx context.Context, c model.Comment) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE comments SET text = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.Text, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a comment.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single comment or ErrNotFound.
func (r *CommentRepository) GetByID(ctx context.Context, id string) (model.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE cm.id = $1`, id))
	if err != nil {
		return model.Comment{}, mapReadError("get comment", err)
	}
	return c, nil
}

// ListByEvent returns an event's comments, oldest first.
func (r *CommentRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error) {
	rows, err := r.db.Query(ctx, commentSelect+` WHERE cm.event_id = $1 ORDER BY cm.created_at, cm.id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments by event: %w", err)
	}
	return collectComments(rows)
}

// ListByAuthor returns a user's comments, newest first.
func (r *CommentRepository) ListByAuthor(ctx context.Context, userID string) ([]model.Comment, error) {
	rows, err := r.db.Query(ctx, commentSelect+` WHERE cm.author_id = $1 ORDER BY cm.created_at DESC, cm.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list comments by author: %w", err)
	}
	return collectComments(rows)
}

// Search returns comments matching q, newest first.
func (r *CommentRepository) Search(ctx context.Context, q model.CommentQuery) ([]model.Comment, error) {
	var f filter
	if q.Text != "" {
		f.where("cm.text ILIKE " + f.arg(containsPattern(q.Text)))
	}
	if len(q.Users) > 0 {
		f.where("cm.author_id = ANY(" + f.arg(q.Users) + ")")
	}
	if len(q.Events) > 0 {
		f.where("cm.event_id = ANY(" + f.arg(q.Events) + ")")
	}
	if len(q.Comments) > 0 {
		f.where("cm.id = ANY(" + f.arg(q.Comments) + ")")
	}
	if q.RangeStart != nil {
		f.where("cm.created_at >= " + f.arg(*q.RangeStart))
	}
	if q.RangeEnd != nil {
		f.where("cm.created_at <= " + f.arg(*q.RangeEnd))
	}
	query := commentSelect + f.String() + ` ORDER BY cm.created_at DESC, cm.id` + f.page(q.Offset, q.Limit)

	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("search comments: %w", err)
	}
	return collectComments(rows)
}
