package sqlite

import (
	"context"
	"fmt"

	"github.com/sentinelgate/gatekeep/internal/domain/auth"
)

// GetAPIKeys returns every persisted API key ordered by id.
func (s *Store) GetAPIKeys(ctx context.Context) ([]auth.ApiKey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, key_hash, created_at FROM api_keys ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying api keys: %w", err)
	}
	defer rows.Close()

	var out []auth.ApiKey
	for rows.Next() {
		var k auth.ApiKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning api key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// AddAPIKey persists a new API key record. It fails if name already
// exists.
func (s *Store) AddAPIKey(ctx context.Context, name, keyHash string) (auth.ApiKey, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (name, key_hash) VALUES (?, ?)`, name, keyHash)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ApiKey{}, fmt.Errorf("api key %q already exists", name)
		}
		return auth.ApiKey{}, fmt.Errorf("inserting api key: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return auth.ApiKey{}, fmt.Errorf("reading inserted api key id: %w", err)
	}

	var created auth.ApiKey
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, key_hash, created_at FROM api_keys WHERE id = ?`, id)
	if err := row.Scan(&created.ID, &created.Name, &created.KeyHash, &created.CreatedAt); err != nil {
		return auth.ApiKey{}, fmt.Errorf("reading inserted api key: %w", err)
	}
	return created, nil
}

// DeleteAPIKey removes the key named name, reporting whether a row was
// removed.
func (s *Store) DeleteAPIKey(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM api_keys WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("deleting api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}
