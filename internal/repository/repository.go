// Package repository implements all database queries for the main service.
// It uses pgx directly (no ORM). Operations that must not race on an event's
// capacity take a row lock on the event with SELECT ... FOR UPDATE.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("already exists")

// ErrReferenced is returned when a delete is blocked by a foreign key.
var ErrReferenced = errors.New("still referenced")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapWriteError translates constraint violations to sentinel errors.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgForeignKeyViolation:
			return ErrReferenced
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapReadError translates pgx.ErrNoRows to ErrNotFound.
func mapReadError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

type scanner interface {
	Scan(dest ...any) error
}

// inTx runs fn inside a transaction. fn's error is returned unwrapped so
// callers can match domain errors raised inside the unit of work.
func inTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// filter accumulates WHERE clauses with positional arguments.
type filter struct {
	clauses []string
	args    []any
}

// arg registers v and returns its placeholder.
func (f *filter) arg(v any) string {
	f.args = append(f.args, v)
	return fmt.Sprintf("$%d", len(f.args))
}

func (f *filter) where(clause string) {
	f.clauses = append(f.clauses, clause)
}

func (f *filter) String() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// page appends LIMIT/OFFSET. A zero limit means no limit.
func (f *filter) page(offset, limit int) string {
	var b strings.Builder
	if limit > 0 {
		b.WriteString(" LIMIT " + f.arg(limit))
	}
	if offset > 0 {
		b.WriteString(" OFFSET " + f.arg(offset))
	}
	return b.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
