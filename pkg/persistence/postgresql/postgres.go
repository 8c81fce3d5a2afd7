// Package postgresql provides a PostgreSQL persistence adapter. The whole
// document lives in a single row keyed by the storage key, matching the
// whole-document, last-writer-wins contract of the adapter seam.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/tabflow/tabflow/pkg/persistence"
	"github.com/tabflow/tabflow/pkg/persistence/sqlbase"
)

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS documents (
				key TEXT PRIMARY KEY,
				body JSONB NOT NULL,
				last_modified TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			);
		`,
	}
}

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence creates a new PostgreSQL persistence layer and runs
// migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{db: database, logger: logger}, nil
}

// Load reads the stored document row. A missing row or an unrecognized shape
// yields the empty dataset rather than an error.
func (p *Persistence) Load(ctx context.Context) (*persistence.Dataset, error) {
	var body []byte

	err := p.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE key = $1", persistence.StorageKey).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.EmptyDataset(), nil
		}

		return nil, persistence.NewStoreError("Load", persistence.StorageKey, err)
	}

	return persistence.DecodeDocument(body), nil
}

// SaveAll upserts the entire document, replacing any prior one.
func (p *Persistence) SaveAll(ctx context.Context, dataset *persistence.Dataset) error {
	data, err := persistence.EncodeDocument(dataset)
	if err != nil {
		return persistence.NewStoreError("SaveAll", persistence.StorageKey,
			fmt.Errorf("failed to marshal document: %w", err))
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (key, body, last_modified)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, last_modified = NOW()
	`, persistence.StorageKey, data)
	if err != nil {
		return persistence.NewStoreError("SaveAll", persistence.StorageKey, err)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
