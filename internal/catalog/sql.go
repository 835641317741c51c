package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DefaultTable is the table read by the SQL sources when none is configured.
const DefaultTable = "directory_entities"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// selectSQL returns the query both SQL sources run. Rows come back in
// primary-key order so the catalog ordering is stable across loads.
func selectSQL(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		return "", eris.Errorf("catalog: invalid table name %q", table)
	}
	return fmt.Sprintf(
		`SELECT name, address, city, zip, latitude, longitude, website FROM %s ORDER BY id`, table,
	), nil
}

// Pool is the subset of pgxpool.Pool used by PostgresSource.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads entities from a Postgres table.
type PostgresSource struct {
	Pool  Pool
	Table string
}

// Fetch implements Source.
func (s *PostgresSource) Fetch(ctx context.Context) ([]Record, error) {
	query, err := selectSQL(s.Table)
	if err != nil {
		return nil, err
	}

	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: postgres query")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r sqlRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, eris.Wrap(err, "catalog: postgres scan")
		}
		out = append(out, r.record())
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: postgres iterate")
	}
	return out, nil
}

// SQLiteSource reads entities from a SQLite database file.
type SQLiteSource struct {
	DSN   string
	Table string
}

// Fetch implements Source.
func (s *SQLiteSource) Fetch(ctx context.Context) ([]Record, error) {
	query, err := selectSQL(s.Table)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite open")
	}
	defer db.Close() //nolint:errcheck

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite query")
	}
	defer rows.Close() //nolint:errcheck

	var out []Record
	for rows.Next() {
		var r sqlRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, eris.Wrap(err, "catalog: sqlite scan")
		}
		out = append(out, r.record())
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite iterate")
	}
	return out, nil
}

type sqlRow struct {
	name, address, city, zip, website sql.NullString
	lat, lon                          sql.NullFloat64
}

func (r *sqlRow) dest() []any {
	return []any{&r.name, &r.address, &r.city, &r.zip, &r.lat, &r.lon, &r.website}
}

func (r *sqlRow) record() Record {
	rec := Record{
		"name":    r.name.String,
		"address": r.address.String,
		"city":    r.city.String,
		"zip":     r.zip.String,
		"website": r.website.String,
	}
	if r.lat.Valid {
		rec["latitude"] = r.lat.Float64
	}
	if r.lon.Valid {
		rec["longitude"] = r.lon.Float64
	}
	return rec
}
