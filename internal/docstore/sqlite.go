package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT collection, id, data, created_at FROM documents WHERE collection = ? ORDER BY created_at, id`,
		collection,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s", collection)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var data string
		if err := rows.Scan(&d.Collection, &d.ID, &data, &d.CreatedAt); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan document in %s", collection)
		}
		d.Data = json.RawMessage(data)
		docs = append(docs, d)
	}
	return docs, eris.Wrapf(rows.Err(), "sqlite: iterate %s", collection)
}

func (s *SQLiteStore) AddDocument(ctx context.Context, collection string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: marshal document for %s", collection)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data, created_at) VALUES (?, ?, ?, ?)`,
		collection, id, string(data), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert into %s", collection)
	}
	return id, nil
}

func (s *SQLiteStore) DeleteDocument(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete %s/%s", collection, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete %s/%s rows affected", collection, id)
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s/%s", collection, id)
	}
	return nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, path string) (*Document, bool, error) {
	collection, id, err := splitPath(path)
	if err != nil {
		return nil, false, err
	}

	var d Document
	var data string
	err = s.db.QueryRowContext(ctx,
		`SELECT collection, id, data, created_at FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&d.Collection, &d.ID, &data, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: get %s", path)
	}
	d.Data = json.RawMessage(data)
	return &d, true, nil
}

func (s *SQLiteStore) SetDocument(ctx context.Context, path string, v any, merge bool) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal document for %s", path)
	}

	if merge {
		if existing, ok, getErr := s.GetDocument(ctx, path); getErr != nil {
			return getErr
		} else if ok {
			if data, err = mergeJSON(existing.Data, data); err != nil {
				return err
			}
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data`,
		collection, id, string(data), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: set %s", path)
}
