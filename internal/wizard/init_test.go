package wizard

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateOwnerRepo(t *testing.T) {
	if err := validateOwnerRepo("acme/alpha"); err != nil {
		t.Errorf("expected acme/alpha to validate, got %v", err)
	}
	if err := validateOwnerRepo("not-a-valid-entry"); err == nil {
		t.Errorf("expected an error for a bare name with no slash")
	}
}

func TestWriteJoinsLinesWithTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repos.list")

	if err := Write(path, []string{"default-private", "acme/alpha", "@dev"}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "default-private\nacme/alpha\n@dev\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestWriteEmptyLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repos.list")
	if err := Write(path, nil); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "" {
		t.Errorf("expected empty file, got %q", data)
	}
}
