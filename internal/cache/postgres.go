package cache

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

type postgresSnapshots struct {
	db *sql.DB
}

// NewPostgresSnapshots returns a Snapshots implementation backed by a
// single-table PostgreSQL key/value store.
func NewPostgresSnapshots(db *sql.DB) Snapshots {
	return &postgresSnapshots{db: db}
}

// EnsureSchema creates the snapshots table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS snapshots (
		key        TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_on TIMESTAMPTZ NOT NULL
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (s *postgresSnapshots) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	query := `SELECT payload FROM snapshots WHERE key = $1`
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *postgresSnapshots) Save(ctx context.Context, key string, payload []byte) error {
	query := `INSERT INTO snapshots (key, payload, updated_on) VALUES ($1, $2, $3)
	          ON CONFLICT (key) DO UPDATE SET payload = $2, updated_on = $3`
	_, err := s.db.ExecContext(ctx, query, key, payload, time.Now())
	return err
}

func (s *postgresSnapshots) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM snapshots WHERE key = $1`
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}
