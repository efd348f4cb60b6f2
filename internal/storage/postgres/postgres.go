package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FranksOps/scout/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS scraped_content (
	id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	target_type TEXT NOT NULL,
	title TEXT,
	content TEXT,
	metadata JSONB NOT NULL,
	signals JSONB NOT NULL,
	status_code INTEGER NOT NULL,
	blocked BOOLEAN NOT NULL,
	block_src TEXT,
	scraped_at TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL
);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	_, err = pool.Exec(ctx, schema)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, content *storage.ScrapedContent) error {
	metadataJSON, err := json.Marshal(content.Metadata)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	signalsJSON, err := json.Marshal(content.Signals)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	query := `
	INSERT INTO scraped_content (
		id, url, target_type, title, content, metadata, signals, status_code, blocked, block_src, scraped_at, duration_ms
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = b.pool.Exec(ctx, query,
		content.ID,
		content.URL,
		content.TargetType,
		content.Title,
		content.Content,
		metadataJSON,
		signalsJSON,
		content.StatusCode,
		content.Blocked,
		content.BlockSrc,
		content.ScrapedAt,
		content.Duration.Milliseconds(),
	)

	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.ScrapedContent, error) {
	query := `SELECT id, url, target_type, title, content, metadata, signals, status_code, blocked, block_src, scraped_at, duration_ms FROM scraped_content WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.URL != "" {
		query += fmt.Sprintf(` AND url = $%d`, paramCount)
		args = append(args, filter.URL)
		paramCount++
	}
	if filter.TargetType != "" {
		query += fmt.Sprintf(` AND target_type = $%d`, paramCount)
		args = append(args, filter.TargetType)
		paramCount++
	}
	if filter.Blocked != nil {
		query += fmt.Sprintf(` AND blocked = $%d`, paramCount)
		args = append(args, *filter.Blocked)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND scraped_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY scraped_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
		paramCount++
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	defer rows.Close()

	var results []*storage.ScrapedContent
	for rows.Next() {
		var c storage.ScrapedContent
		var metadataJSON, signalsJSON []byte
		var durationMs int64

		err := rows.Scan(
			&c.ID, &c.URL, &c.TargetType, &c.Title, &c.Content, &metadataJSON, &signalsJSON,
			&c.StatusCode, &c.Blocked, &c.BlockSrc, &c.ScrapedAt, &durationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}

		c.Duration = time.Duration(durationMs) * time.Millisecond
		if err := json.Unmarshal(metadataJSON, &c.Metadata); err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := json.Unmarshal(signalsJSON, &c.Signals); err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}

		results = append(results, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
