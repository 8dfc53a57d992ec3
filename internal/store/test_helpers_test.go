package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// payload builds a minimal snapshot body.
func payload(id, script, line string) []byte {
	return []byte(`{"id":"` + id + `","script":"` + script + `","resume_line_id":"` + line + `","saved_at":1700000000000}`)
}
