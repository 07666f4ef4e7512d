// Package sqlite provides a local vector index backed by SQLite.
//
// Vectors are stored as little-endian float32 blobs and queried with an
// exact brute-force cosine scan. That is entirely adequate for a corpus
// of a few thousand letter chunks and keeps the local setup free of any
// external database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a SQLite-backed vector index using exact cosine similarity.
type Index struct {
	db         *sql.DB
	path       string
	dimensions int
}

// NewIndex opens (or creates) a vector index at the given file path.
// If path is empty, defaults to ~/.omaha/data/index.db.
func NewIndex(path string, dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".omaha", "data", "index.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode allows concurrent readers during ingestion appends.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	return &Index{
		db:         db,
		path:       path,
		dimensions: dimensions,
	}, nil
}

// Path returns the database file path.
func (ix *Index) Path() string {
	return ix.path
}

// EnsureSchema provisions the entries table. Safe to call repeatedly;
// existing entries are untouched.
func (ix *Index) EnsureSchema(ctx context.Context) error {
	_, err := ix.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS entries (
			id           TEXT PRIMARY KEY,
			source_id    TEXT NOT NULL,
			chunk_index  INTEGER NOT NULL,
			total_chunks INTEGER NOT NULL,
			year         TEXT NOT NULL DEFAULT '',
			content      TEXT NOT NULL,
			extra        TEXT NOT NULL DEFAULT 'null',
			embedding    BLOB NOT NULL,
			created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (source_id, chunk_index)
		);
		CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source_id);
	`)
	if err != nil {
		return fmt.Errorf("%w: creating entries table: %v", domain.ErrIndexWrite, err)
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

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, source_id, chunk_index, total_chunks, year, content, extra, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id, chunk_index) DO UPDATE SET
			total_chunks = excluded.total_chunks,
			year         = excluded.year,
			content      = excluded.content,
			extra        = excluded.extra,
			embedding    = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare statement: %v", domain.ErrIndexWrite, err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		id := entry.ID
		if id == "" {
			id = uuid.New().String()
		}

		extraJSON, err := json.Marshal(entry.Metadata.Extra)
		if err != nil {
			return fmt.Errorf("%w: marshal extra metadata: %v", domain.ErrIndexWrite, err)
		}

		if _, err := stmt.ExecContext(ctx, id, entry.Metadata.SourceID, entry.Metadata.ChunkIndex,
			entry.Metadata.TotalChunks, entry.Metadata.Year, entry.Metadata.Text,
			string(extraJSON), float32SliceToBytes(entry.Vector)); err != nil {
			return fmt.Errorf("%w: saving entry: %v", domain.ErrIndexWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrIndexWrite, err)
	}
	return nil
}

// Query returns the topK most similar entries by cosine similarity,
// descending. Ties keep insertion order. An empty index yields an
// empty result, not an error.
func (ix *Index) Query(ctx context.Context, vector []float32, topK int) ([]driven.VectorHit, error) {
	if len(vector) != ix.dimensions {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index expects %d",
			domain.ErrIndexQuery, len(vector), ix.dimensions)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", domain.ErrIndexQuery)
	}

	rows, err := ix.db.QueryContext(ctx, `
		SELECT source_id, chunk_index, total_chunks, year, content, extra, embedding
		FROM entries ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexQuery, err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var meta driven.EntryMetadata
		var extraJSON string
		var blob []byte

		if err := rows.Scan(&meta.SourceID, &meta.ChunkIndex, &meta.TotalChunks,
			&meta.Year, &meta.Text, &extraJSON, &blob); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", domain.ErrIndexQuery, err)
		}
		if extraJSON != "" && extraJSON != "null" {
			if err := json.Unmarshal([]byte(extraJSON), &meta.Extra); err != nil {
				return nil, fmt.Errorf("%w: decode extra metadata: %v", domain.ErrIndexQuery, err)
			}
		}

		hits = append(hits, driven.VectorHit{
			Metadata: meta,
			Score:    cosineSimilarity(vector, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexQuery, err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// DeleteBySource removes all entries for one source document.
func (ix *Index) DeleteBySource(ctx context.Context, sourceID string) error {
	if _, err := ix.db.ExecContext(ctx, "DELETE FROM entries WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("%w: delete source %s: %v", domain.ErrIndexWrite, sourceID, err)
	}
	return nil
}

// Count returns the number of stored entries.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var count int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexQuery, err)
	}
	return count, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
