package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestBuildListsWorkingDirFirst(t *testing.T) {
	doc := Build([]string{"alpha", "beta"})
	if len(doc.Folders) != 3 {
		t.Fatalf("expected 3 folders, got %d", len(doc.Folders))
	}
	if doc.Folders[0].Path != "." {
		t.Errorf("Folders[0].Path = %q, want \".\"", doc.Folders[0].Path)
	}
	if doc.Folders[1].Path != "../alpha" || doc.Folders[2].Path != "../beta" {
		t.Errorf("Folders = %+v", doc.Folders)
	}
}

func TestWriteProducesValidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	doc := Build([]string{"alpha"})
	if err := Write(path, doc); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	var got Document
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Folders) != 2 {
		t.Errorf("round-tripped folders = %+v", got.Folders)
	}
}
