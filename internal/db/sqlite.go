package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sakshee44566/CareerHub/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);`

// SQLiteBackend stores the collection as one JSON row in an embedded
// SQLite database.
type SQLiteBackend struct {
	db   *sql.DB
	name string
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the documents table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serialises writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &SQLiteBackend{db: db, name: collectionName}, nil
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}

func (s *SQLiteBackend) LoadCollection(ctx context.Context) ([]models.Post, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, s.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.Post{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	var posts []models.Post
	if err := json.Unmarshal([]byte(body), &posts); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return posts, nil
}

func (s *SQLiteBackend) SaveCollection(ctx context.Context, posts []models.Post) error {
	body, err := encodeCollection(posts)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, s.name, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}

func encodeCollection(posts []models.Post) ([]byte, error) {
	if posts == nil {
		posts = []models.Post{}
	}
	body, err := json.Marshal(posts)
	if err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	return body, nil
}
