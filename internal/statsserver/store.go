// Package statsserver implements the statistics service: hit storage and the
// HTTP API serving aggregated view counts.
package statsserver

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/stats"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

var schemas = map[string]string{
	DriverPostgres: `CREATE TABLE IF NOT EXISTS endpoint_hits (
		id      BIGSERIAL PRIMARY KEY,
		app     VARCHAR(255) NOT NULL,
		uri     VARCHAR(512) NOT NULL,
		ip      VARCHAR(64) NOT NULL,
		created TIMESTAMPTZ NOT NULL
	)`,
	DriverSQLite: `CREATE TABLE IF NOT EXISTS endpoint_hits (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		app     TEXT NOT NULL,
		uri     TEXT NOT NULL,
		ip      TEXT NOT NULL,
		created TIMESTAMP NOT NULL
	)`,
}

const hitIndex = `CREATE INDEX IF NOT EXISTS endpoint_hits_uri_created_idx ON endpoint_hits (uri, created)`

type hitRow struct {
	App     string    `db:"app"`
	URI     string    `db:"uri"`
	IP      string    `db:"ip"`
	Created time.Time `db:"created"`
}

type statsRow struct {
	App  string `db:"app"`
	URI  string `db:"uri"`
	Hits int64  `db:"hits"`
}

// Store persists endpoint hits.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database and returns a store over it.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported stats driver %q", driver)
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single connection keeps an in-memory database alive and
		// serializes writers.
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the hits table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemas[s.db.DriverName()]); err != nil {
		return fmt.Errorf("create endpoint_hits: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, hitIndex); err != nil {
		return fmt.Errorf("create endpoint_hits index: %w", err)
	}
	return nil
}

// SaveHit stores one hit.
func (s *Store) SaveHit(ctx context.Context, hit stats.EndpointHit) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO endpoint_hits (app, uri, ip, created) VALUES (:app, :uri, :ip, :created)`,
		hitRow{App: hit.App, URI: hit.URI, IP: hit.IP, Created: normalize(hit.Timestamp.Time)},
	)
	if err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}
	return nil
}

// GetStats aggregates hits in [start, end] per (app, uri), most viewed first.
// An empty uris matches every URI. With unique, each IP counts once.
func (s *Store) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]stats.ViewStats, error) {
	count := "COUNT(ip)"
	if unique {
		count = "COUNT(DISTINCT ip)"
	}
	query := `SELECT app, uri, ` + count + ` AS hits FROM endpoint_hits WHERE created BETWEEN ? AND ?`
	args := []any{normalize(start), normalize(end)}
	if len(uris) > 0 {
		query += ` AND uri IN (?)`
		args = append(args, uris)
	}
	query += ` GROUP BY app, uri ORDER BY hits DESC, uri`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("expand stats query: %w", err)
	}
	var rows []statsRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select stats: %w", err)
	}

	out := make([]stats.ViewStats, 0, len(rows))
	for _, r := range rows {
		out = append(out, stats.ViewStats{App: r.App, URI: r.URI, Hits: r.Hits})
	}
	return out, nil
}

// normalize stores every instant in UTC at second precision so that SQLite's
// textual timestamps compare in time order.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
