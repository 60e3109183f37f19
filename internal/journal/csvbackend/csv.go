package csvbackend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/FranksOps/puresearch/internal/journal"
)

// ensure csvBackend implements journal.Backend
var _ journal.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// headers defines the CSV column order
var headers = []string{
	"id",
	"op",
	"target",
	"status_code",
	"outcome",
	"error",
	"duration_ms",
	"created_at",
}

// New creates a new CSV-backed journal.Backend. The file opens cleanly in a
// spreadsheet.
func New(filePath string) (journal.Backend, error) {
	// Open file for appending, create if it doesn't exist
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}

	// Check if file is empty to write headers
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("context: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("context: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("context: %w", err)
		}
	}

	return &csvBackend{
		file: f,
	}, nil
}

func (b *csvBackend) Save(ctx context.Context, record *journal.Record) error {
	row := []string{
		record.ID,
		record.Op,
		record.Target,
		strconv.Itoa(record.StatusCode),
		record.Outcome,
		record.Error,
		strconv.FormatInt(record.Duration.Milliseconds(), 10),
		record.CreatedAt.Format(time.RFC3339Nano),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Ensure we're at the end of the file for appending (just in case)
	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("context: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("context: %w", err)
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("context: %w", err)
	}

	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter journal.Filter) ([]*journal.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Seek to the beginning of the file to read all entries
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}
	defer func() {
		// Restore pointer to end for writing
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)

	// Read headers
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return []*journal.Record{}, nil
		}
		return nil, fmt.Errorf("context: %w", err)
	}

	var matched []*journal.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("context: %w", err)
		}

		if len(row) != len(headers) {
			continue // skip malformed rows
		}

		statusCode, _ := strconv.Atoi(row[3])
		durationMs, _ := strconv.ParseInt(row[6], 10, 64)
		createdAt, _ := time.Parse(time.RFC3339Nano, row[7])

		rec := &journal.Record{
			ID:         row[0],
			Op:         row[1],
			Target:     row[2],
			StatusCode: statusCode,
			Outcome:    row[4],
			Error:      row[5],
			Duration:   time.Duration(durationMs) * time.Millisecond,
			CreatedAt:  createdAt,
		}

		if filter.Match(rec) {
			matched = append(matched, rec)
		}
	}

	return filter.Window(matched), nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
