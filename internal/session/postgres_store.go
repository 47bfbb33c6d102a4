package session

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const sessionSchema = `
	CREATE TABLE IF NOT EXISTS session_kv (
		profile    TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (profile, key)
	)
`

type postgresStore struct {
	db      *sqlx.DB
	profile string
}

// NewPostgresStore creates the session_kv table if needed.
func NewPostgresStore(ctx context.Context, db *sqlx.DB, profile string) (Store, error) {
	if _, err := db.ExecContext(ctx, sessionSchema); err != nil {
		return nil, err
	}
	return &postgresStore{db: db, profile: profile}, nil
}

func (s *postgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := `SELECT value FROM session_kv WHERE profile = $1 AND key = $2`
	err := s.db.GetContext(ctx, &value, query, s.profile, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *postgresStore) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	vals := make([]string, 0, len(values))
	for k, v := range values {
		keys = append(keys, k)
		vals = append(vals, v)
	}

	query := `
		INSERT INTO session_kv (profile, key, value, updated_at)
		SELECT $1, k, v, now() FROM unnest($2::text[], $3::text[]) AS t(k, v)
		ON CONFLICT (profile, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, s.profile, pq.Array(keys), pq.Array(vals))
	return err
}

func (s *postgresStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query := `DELETE FROM session_kv WHERE profile = $1 AND key = ANY($2)`
	_, err := s.db.ExecContext(ctx, query, s.profile, pq.Array(keys))
	return err
}
