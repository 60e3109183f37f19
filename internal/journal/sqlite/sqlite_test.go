package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/FranksOps/puresearch/internal/journal/journaltest"
)

func TestSQLiteBackend(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer b.Close()

	journaltest.Run(t, b)
}
