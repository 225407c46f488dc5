package fileid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestContentID(t *testing.T) {
	id1 := ContentID([]byte("Down the Rabbit-Hole"))
	id2 := ContentID([]byte("Down the Rabbit-Hole"))
	if id1 != id2 {
		t.Errorf("same content should give same ID: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, prefix) {
		t.Errorf("ID should have prefix %q: got %q", prefix, id1)
	}
	if len(id1) != len(prefix)+64 {
		t.Errorf("unexpected ID length: %q", id1)
	}
	if ContentID([]byte("A Mad Tea-Party")) == id1 {
		t.Error("different content should give different IDs")
	}
}

func TestFileContentID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alice.txt")
	data := []byte("Alice was beginning to get very tired")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	got, err := FileContentID(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != ContentID(data) {
		t.Errorf("FileContentID = %q, want %q", got, ContentID(data))
	}
}

func TestFileContentID_missing(t *testing.T) {
	if _, err := FileContentID(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
