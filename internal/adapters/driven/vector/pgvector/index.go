// Package pgvector provides a vector index backed by Postgres with the
// pgvector extension. Selected when DATABASE_URL is configured; the
// similarity metric is cosine, matching the local SQLite backend.
package pgvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	pgv "github.com/pgvector/pgvector-go"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a Postgres/pgvector-backed vector index.
type Index struct {
	db         *sql.DB
	dimensions int
}

// NewIndex connects to Postgres using the given connection string
// (typically the DATABASE_URL environment variable).
func NewIndex(databaseURL string, dimensions int) (*Index, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: database URL is required", domain.ErrInvalidInput)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	return &Index{
		db:         db,
		dimensions: dimensions,
	}, nil
}

// EnsureSchema provisions the extension and entries table. Safe to call
// repeatedly; existing entries are untouched.
func (ix *Index) EnsureSchema(ctx context.Context) error {
	statements := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS letter_chunks (
				id           TEXT PRIMARY KEY,
				source_id    TEXT NOT NULL,
				chunk_index  INTEGER NOT NULL,
				total_chunks INTEGER NOT NULL,
				year         TEXT NOT NULL DEFAULT '',
				content      TEXT NOT NULL,
				extra        JSONB,
				embedding    vector(%d) NOT NULL,
				created_at   TIMESTAMPTZ DEFAULT now(),
				UNIQUE (source_id, chunk_index)
			)`, ix.dimensions),
		"CREATE INDEX IF NOT EXISTS idx_letter_chunks_source ON letter_chunks (source_id)",
	}

	for _, stmt := range statements {
		if _, err := ix.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure schema: %v", domain.ErrIndexWrite, err)
		}
	}
	return nil
}

// Upsert appends entries, replacing any previous entry with the same
// (source id, chunk index) key.
func (ix *Index) Upsert(ctx context.Context, entries []driven.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	for i, entry := range entries {
		if len(entry.Vector) != ix.dimensions {
			return fmt.Errorf("%w: entry %d has dimension %d, index expects %d",
				domain.ErrIndexWrite, i, len(entry.Vector), ix.dimensions)
		}
		if err := entry.Metadata.Validate(); err != nil {
			return fmt.Errorf("%w: entry %d: %v", domain.ErrIndexWrite, i, err)
		}
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrIndexWrite, err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		id := entry.ID
		if id == "" {
			id = uuid.New().String()
		}

		extraJSON, err := json.Marshal(entry.Metadata.Extra)
		if err != nil {
			return fmt.Errorf("%w: marshal extra metadata: %v", domain.ErrIndexWrite, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO letter_chunks (id, source_id, chunk_index, total_chunks, year, content, extra, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (source_id, chunk_index) DO UPDATE SET
				total_chunks = EXCLUDED.total_chunks,
				year         = EXCLUDED.year,
				content      = EXCLUDED.content,
				extra        = EXCLUDED.extra,
				embedding    = EXCLUDED.embedding
		`, id, entry.Metadata.SourceID, entry.Metadata.ChunkIndex, entry.Metadata.TotalChunks,
			entry.Metadata.Year, entry.Metadata.Text, string(extraJSON), pgv.NewVector(entry.Vector))
		if err != nil {
			return fmt.Errorf("%w: saving entry: %v", domain.ErrIndexWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrIndexWrite, err)
	}
	return nil
}

// Query returns the topK most similar entries by cosine similarity,
// descending. The <=> operator is pgvector's cosine distance, so the
// score is 1 - distance. An empty index yields an empty result.
func (ix *Index) Query(ctx context.Context, vector []float32, topK int) ([]driven.VectorHit, error) {
	if len(vector) != ix.dimensions {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index expects %d",
			domain.ErrIndexQuery, len(vector), ix.dimensions)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", domain.ErrIndexQuery)
	}

	rows, err := ix.db.QueryContext(ctx, `
		SELECT source_id, chunk_index, total_chunks, year, content, extra,
		       1 - (embedding <=> $1) AS score
		FROM letter_chunks
		ORDER BY embedding <=> $1, created_at
		LIMIT $2
	`, pgv.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexQuery, err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var meta driven.EntryMetadata
		var extraJSON sql.NullString
		var score float64

		if err := rows.Scan(&meta.SourceID, &meta.ChunkIndex, &meta.TotalChunks,
			&meta.Year, &meta.Text, &extraJSON, &score); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", domain.ErrIndexQuery, err)
		}
		if extraJSON.Valid && extraJSON.String != "null" {
			if err := json.Unmarshal([]byte(extraJSON.String), &meta.Extra); err != nil {
				return nil, fmt.Errorf("%w: decode extra metadata: %v", domain.ErrIndexQuery, err)
			}
		}

		hits = append(hits, driven.VectorHit{Metadata: meta, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexQuery, err)
	}

	return hits, nil
}

// DeleteBySource removes all entries for one source document.
func (ix *Index) DeleteBySource(ctx context.Context, sourceID string) error {
	if _, err := ix.db.ExecContext(ctx, "DELETE FROM letter_chunks WHERE source_id = $1", sourceID); err != nil {
		return fmt.Errorf("%w: delete source %s: %v", domain.ErrIndexWrite, sourceID, err)
	}
	return nil
}

// Count returns the number of stored entries.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var count int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM letter_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexQuery, err)
	}
	return count, nil
}

// Ping verifies the database is reachable.
func (ix *Index) Ping(ctx context.Context) error {
	if err := ix.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: postgres: %v", domain.ErrVectorIndexUnavailable, err)
	}
	return nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}
