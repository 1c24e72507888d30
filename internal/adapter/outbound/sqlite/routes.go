package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/sentinelgate/gatekeep/internal/domain/route"
)

// GetRoutes returns every persisted route ordered by id for a stable,
// predictable listing.
func (s *Store) GetRoutes(ctx context.Context) ([]route.Route, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, path, upstream, created_at FROM routes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	defer rows.Close()

	var out []route.Route
	for rows.Next() {
		var r route.Route
		if err := rows.Scan(&r.ID, &r.Path, &r.Upstream, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AddRoute persists a new route. It fails if path already exists.
func (s *Store) AddRoute(ctx context.Context, path, upstream string) (route.Route, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO routes (path, upstream) VALUES (?, ?)`, path, upstream)
	if err != nil {
		if isUniqueViolation(err) {
			return route.Route{}, fmt.Errorf("route %q already exists", path)
		}
		return route.Route{}, fmt.Errorf("inserting route: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return route.Route{}, fmt.Errorf("reading inserted route id: %w", err)
	}

	var created route.Route
	row := s.db.QueryRowContext(ctx,
		`SELECT id, path, upstream, created_at FROM routes WHERE id = ?`, id)
	if err := row.Scan(&created.ID, &created.Path, &created.Upstream, &created.CreatedAt); err != nil {
		return route.Route{}, fmt.Errorf("reading inserted route: %w", err)
	}
	return created, nil
}

// DeleteRoute removes the route at path, reporting whether a row was
// removed.
func (s *Store) DeleteRoute(ctx context.Context, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM routes WHERE path = ?`, path)
	if err != nil {
		return false, fmt.Errorf("deleting route: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
// modernc.org/sqlite doesn't expose a typed constraint-violation error
// through database/sql, so this matches SQLite's own wire message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
