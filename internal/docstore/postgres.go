package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool used by the store. pgxmock's pool
// satisfies it, so the store is unit-testable without a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT collection, id, data, created_at FROM documents WHERE collection = $1 ORDER BY created_at, id`,
		collection,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list %s", collection)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var data []byte
		if err := rows.Scan(&d.Collection, &d.ID, &data, &d.CreatedAt); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan document in %s", collection)
		}
		d.Data = json.RawMessage(data)
		docs = append(docs, d)
	}
	return docs, eris.Wrapf(rows.Err(), "postgres: iterate %s", collection)
}

func (s *PostgresStore) AddDocument(ctx context.Context, collection string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: marshal document for %s", collection)
	}

	id := uuid.New().String()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data, created_at) VALUES ($1, $2, $3, $4)`,
		collection, id, data, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert into %s", collection)
	}
	return id, nil
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete %s/%s", collection, id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "%s/%s", collection, id)
	}
	return nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, path string) (*Document, bool, error) {
	collection, id, err := splitPath(path)
	if err != nil {
		return nil, false, err
	}

	var d Document
	var data []byte
	err = s.pool.QueryRow(ctx,
		`SELECT collection, id, data, created_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&d.Collection, &d.ID, &data, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: get %s", path)
	}
	d.Data = json.RawMessage(data)
	return &d, true, nil
}

func (s *PostgresStore) SetDocument(ctx context.Context, path string, v any, merge bool) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal document for %s", path)
	}

	if merge {
		// JSONB || overlays top-level keys server-side in one round trip.
		_, err = s.pool.Exec(ctx,
			`INSERT INTO documents (collection, id, data, created_at) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (collection, id) DO UPDATE SET data = documents.data || excluded.data`,
			collection, id, data, time.Now().UTC(),
		)
		return eris.Wrapf(err, "postgres: merge %s", path)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data`,
		collection, id, data, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: set %s", path)
}
