package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FranksOps/scout/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS scraped_content (
	id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	target_type TEXT NOT NULL,
	title TEXT,
	content TEXT,
	metadata TEXT NOT NULL,
	signals TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	blocked BOOLEAN NOT NULL,
	block_src TEXT,
	scraped_at DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL
);
`

// New creates a new SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, content *storage.ScrapedContent) error {
	metadataJSON, err := json.Marshal(content.Metadata)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	signalsJSON, err := json.Marshal(content.Signals)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	query := `
	INSERT INTO scraped_content (
		id, url, target_type, title, content, metadata, signals, status_code, blocked, block_src, scraped_at, duration_ms
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = b.db.ExecContext(ctx, query,
		content.ID,
		content.URL,
		content.TargetType,
		content.Title,
		content.Content,
		string(metadataJSON),
		string(signalsJSON),
		content.StatusCode,
		content.Blocked,
		content.BlockSrc,
		content.ScrapedAt,
		content.Duration.Milliseconds(),
	)

	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.ScrapedContent, error) {
	query := `SELECT id, url, target_type, title, content, metadata, signals, status_code, blocked, block_src, scraped_at, duration_ms FROM scraped_content WHERE 1=1`
	args := []any{}

	if filter.URL != "" {
		query += ` AND url = ?`
		args = append(args, filter.URL)
	}
	if filter.TargetType != "" {
		query += ` AND target_type = ?`
		args = append(args, filter.TargetType)
	}
	if filter.Blocked != nil {
		query += ` AND blocked = ?`
		args = append(args, *filter.Blocked)
	}
	if filter.Since != nil {
		query += ` AND scraped_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY scraped_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// OFFSET is only valid after a LIMIT clause; -1 means unbounded
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	defer rows.Close()

	var results []*storage.ScrapedContent
	for rows.Next() {
		var c storage.ScrapedContent
		var metadataJSON, signalsJSON string
		var durationMs int64

		err := rows.Scan(
			&c.ID, &c.URL, &c.TargetType, &c.Title, &c.Content, &metadataJSON, &signalsJSON,
			&c.StatusCode, &c.Blocked, &c.BlockSrc, &c.ScrapedAt, &durationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}

		c.Duration = time.Duration(durationMs) * time.Millisecond
		if err := json.Unmarshal([]byte(metadataJSON), &c.Metadata); err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		if err := json.Unmarshal([]byte(signalsJSON), &c.Signals); err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}

		results = append(results, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
