package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestFilter(t *testing.T) {
	var f filter
	if got := f.String(); got != "" {
		t.Errorf("empty filter = %q, want empty", got)
	}

	f.where("a = " + f.arg(1))
	f.where("b = ANY(" + f.arg([]string{"x"}) + ")")
	if got, want := f.String(), " WHERE a = $1 AND b = ANY($2)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := f.page(20, 10), " LIMIT $3 OFFSET $4"; got != want {
		t.Errorf("page() = %q, want %q", got, want)
	}
	if len(f.args) != 4 {
		t.Errorf("len(args) = %d, want 4", len(f.args))
	}
}

func TestFilterPage_NoLimit(t *testing.T) {
	var f filter
	if got := f.page(0, 0); got != "" {
		t.Errorf("page(0, 0) = %q, want empty", got)
	}
	if got := f.page(5, 0); got != " OFFSET $1" {
		t.Errorf("page(5, 0) = %q", got)
	}
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"jazz", "%jazz%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\`, `%c:\\%`},
	}
	for _, tt := range tests {
		if got := containsPattern(tt.in); got != tt.want {
			t.Errorf("containsPattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapErrors(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation}
	if err := mapWriteError("insert", fmt.Errorf("wrapped: %w", unique)); !errors.Is(err, ErrDuplicate) {
		t.Errorf("unique violation mapped to %v", err)
	}
	fk := &pgconn.PgError{Code: pgForeignKeyViolation}
	if err := mapWriteError("delete", fk); !errors.Is(err, ErrReferenced) {
		t.Errorf("foreign key violation mapped to %v", err)
	}
	other := errors.New("boom")
	if err := mapWriteError("insert", other); !errors.Is(err, other) || errors.Is(err, ErrDuplicate) {
		t.Errorf("plain error mapped to %v", err)
	}
	if err := mapReadError("get", pgx.ErrNoRows); !errors.Is(err, ErrNotFound) {
		t.Errorf("no rows mapped to %v", err)
	}
}
