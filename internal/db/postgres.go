package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakshee44566/CareerHub/internal/models"
)

// collectionName is the documents row holding the post collection.
const collectionName = "posts"

// PostgresBackend stores the collection as one JSONB row.
type PostgresBackend struct {
	pool *pgxpool.Pool
	name string
}

// Pool returns the underlying pgxpool.Pool
func (p *PostgresBackend) Pool() *pgxpool.Pool {
	return p.pool
}

func NewPostgresBackend(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	const documentsTableSQL = `CREATE TABLE IF NOT EXISTS documents (
	    name TEXT PRIMARY KEY,
	    body JSONB NOT NULL,
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := pool.Exec(ctx, documentsTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}

	return &PostgresBackend{pool: pool, name: collectionName}, nil
}

func (p *PostgresBackend) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PostgresBackend) LoadCollection(ctx context.Context) ([]models.Post, error) {
	if p.pool == nil {
		return nil, errors.New("db not initialized")
	}

	var body []byte
	err := p.pool.QueryRow(ctx, `SELECT body FROM documents WHERE name = $1`, p.name).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []models.Post{}, nil
		}
		return nil, fmt.Errorf("load collection: %w", err)
	}

	var posts []models.Post
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return posts, nil
}

func (p *PostgresBackend) SaveCollection(ctx context.Context, posts []models.Post) error {
	if p.pool == nil {
		return errors.New("db not initialized")
	}
	body, err := encodeCollection(posts)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`
	if _, err := p.pool.Exec(ctx, query, p.name, string(body)); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}
