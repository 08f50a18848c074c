// Package library persists the durable catalog of captured clips in sqlite.
package library

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"arclip/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS clips (
	id TEXT PRIMARY KEY,
	identifier TEXT NOT NULL,
	start_seconds INTEGER NOT NULL,
	end_seconds INTEGER NOT NULL,
	format TEXT NOT NULL,
	path TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_clips_identifier ON clips(identifier);
`

// Clip is one persisted capture.
type Clip struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Format     string    `json:"format"`
	Path       string    `json:"path"`
	CreatedAt  time.Time `json:"created_at"`
}

// Key returns the clip's dedup key.
func (c Clip) Key() string {
	return store.ClipKey(c.Identifier, c.Start, c.End)
}

// Catalog is a sqlite-backed clip catalog.
type Catalog struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (and if necessary initializes) the catalog at path. A nil
// logger disables logging.
func Open(path string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open clip catalog: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize clip catalog schema: %w", err)
	}

	return &Catalog{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Add records one persisted clip.
func (c *Catalog) Add(ctx context.Context, clip Clip) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO clips (id, identifier, start_seconds, end_seconds, format, path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		clip.ID, clip.Identifier, clip.Start, clip.End, clip.Format, clip.Path, clip.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record clip %s: %w", clip.ID, err)
	}

	c.logger.Debug("recorded clip",
		zap.String("id", clip.ID),
		zap.String("identifier", clip.Identifier))
	return nil
}

// List returns the clips captured from one item, oldest first.
func (c *Catalog) List(ctx context.Context, identifier string) ([]Clip, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, identifier, start_seconds, end_seconds, format, path, created_at
		 FROM clips WHERE identifier = ? ORDER BY created_at, id`, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var clips []Clip
	for rows.Next() {
		var clip Clip
		if err := rows.Scan(&clip.ID, &clip.Identifier, &clip.Start, &clip.End,
			&clip.Format, &clip.Path, &clip.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan clip row: %w", err)
		}
		clips = append(clips, clip)
	}
	return clips, rows.Err()
}

// Find returns the persisted clip matching one exact range, or nil.
func (c *Catalog) Find(ctx context.Context, identifier string, start, end int) (*Clip, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, identifier, start_seconds, end_seconds, format, path, created_at
		 FROM clips WHERE identifier = ? AND start_seconds = ? AND end_seconds = ?
		 ORDER BY created_at LIMIT 1`, identifier, start, end)

	var clip Clip
	err := row.Scan(&clip.ID, &clip.Identifier, &clip.Start, &clip.End,
		&clip.Format, &clip.Path, &clip.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up clip: %w", err)
	}
	return &clip, nil
}

// Keys returns the dedup keys of every cataloged clip, used to seed the
// in-memory dedup store at startup.
func (c *Catalog) Keys(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT identifier, start_seconds, end_seconds FROM clips`)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var keys []string
	for rows.Next() {
		var identifier string
		var start, end int
		if err := rows.Scan(&identifier, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan clip key row: %w", err)
		}
		keys = append(keys, store.ClipKey(identifier, start, end))
	}
	return keys, rows.Err()
}
