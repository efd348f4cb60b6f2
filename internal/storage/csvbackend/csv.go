package csvbackend

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/FranksOps/scout/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// headers defines the CSV column order
var headers = []string{
	"id",
	"url",
	"target_type",
	"title",
	"content",
	"metadata_json",
	"signals_json",
	"status_code",
	"blocked",
	"block_src",
	"scraped_at",
	"duration_ms",
}

// New creates a new CSV-backed storage.Backend.
func New(filePath string) (storage.Backend, error) {
	// Open file for appending, create if it doesn't exist
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	// Check if file is empty to write headers
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: %w", err)
		}
	}

	return &csvBackend{
		file: f,
	}, nil
}

func (b *csvBackend) Save(ctx context.Context, content *storage.ScrapedContent) error {
	metadataJSON, err := json.Marshal(content.Metadata)
	if err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}
	signalsJSON, err := json.Marshal(content.Signals)
	if err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}

	record := []string{
		content.ID,
		content.URL,
		content.TargetType,
		content.Title,
		content.Content,
		string(metadataJSON),
		string(signalsJSON),
		strconv.Itoa(content.StatusCode),
		strconv.FormatBool(content.Blocked),
		content.BlockSrc,
		content.ScrapedAt.Format(time.RFC3339Nano),
		strconv.FormatInt(content.Duration.Milliseconds(), 10),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Ensure we're at the end of the file for appending (just in case)
	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(record); err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}

	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.ScrapedContent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Seek to the beginning of the file to read all entries
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}
	defer func() {
		// Restore pointer to end for writing
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)

	// Read headers
	_, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return []*storage.ScrapedContent{}, nil
		}
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	var allFiltered []*storage.ScrapedContent

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvbackend: %w", err)
		}

		if len(record) != len(headers) {
			continue // skip malformed rows
		}

		var metadata map[string]string
		if err := json.Unmarshal([]byte(record[5]), &metadata); err != nil {
			// fallback to empty if parse fails
			metadata = map[string]string{}
		}
		var signals []storage.Signal
		if err := json.Unmarshal([]byte(record[6]), &signals); err != nil {
			signals = nil
		}
		statusCode, _ := strconv.Atoi(record[7])
		blocked, _ := strconv.ParseBool(record[8])
		scrapedAt, _ := time.Parse(time.RFC3339Nano, record[10])
		durationMs, _ := strconv.ParseInt(record[11], 10, 64)

		c := &storage.ScrapedContent{
			ID:         record[0],
			URL:        record[1],
			TargetType: record[2],
			Title:      record[3],
			Content:    record[4],
			Metadata:   metadata,
			Signals:    signals,
			StatusCode: statusCode,
			Blocked:    blocked,
			BlockSrc:   record[9],
			ScrapedAt:  scrapedAt,
			Duration:   time.Duration(durationMs) * time.Millisecond,
		}

		// Apply filters
		if filter.URL != "" && c.URL != filter.URL {
			continue
		}
		if filter.TargetType != "" && c.TargetType != filter.TargetType {
			continue
		}
		if filter.Blocked != nil && c.Blocked != *filter.Blocked {
			continue
		}
		if filter.Since != nil && c.ScrapedAt.Before(*filter.Since) {
			continue
		}

		allFiltered = append(allFiltered, c)
	}

	// Order by scraped_at DESC (reverse the slice)
	for i, j := 0, len(allFiltered)-1; i < j; i, j = i+1, j-1 {
		allFiltered[i], allFiltered[j] = allFiltered[j], allFiltered[i]
	}

	// Apply Offset
	if filter.Offset > 0 {
		if filter.Offset >= len(allFiltered) {
			return []*storage.ScrapedContent{}, nil
		}
		allFiltered = allFiltered[filter.Offset:]
	}

	// Apply Limit
	if filter.Limit > 0 && filter.Limit < len(allFiltered) {
		allFiltered = allFiltered[:filter.Limit]
	}

	return allFiltered, nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
