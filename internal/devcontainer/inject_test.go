package devcontainer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func TestInjectCreatesFileWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devcontainer.json")

	if err := Inject(path, []string{"acme/alpha"}, Permissions{Permissions: "read", Tool: "claude"}); err != nil {
		t.Fatalf("Inject() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !json.Valid(data) {
		t.Fatalf("output is not valid JSON: %s", data)
	}

	result := gjson.GetBytes(data, `customizations.codespaces.repositories.acme/alpha.permissions`)
	if result.String() != "read" {
		t.Errorf("permissions = %q, want read", result.String())
	}
}

func TestInjectTolerantOfJSONC(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devcontainer.json")
	seed := `{
  // a leading comment
  "name": "my-container",
  "customizations": {
    "codespaces": {
      "repositories": {}, // trailing comma below
    },
  },
}
`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Inject(path, []string{"acme/beta"}, Permissions{Permissions: "write"}); err != nil {
		t.Fatalf("Inject() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Fatalf("output is not valid JSON: %s", data)
	}
	if got := gjson.GetBytes(data, "name").String(); got != "my-container" {
		t.Errorf("name = %q, want my-container (existing content must survive)", got)
	}
}

func TestInjectIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devcontainer.json")

	for i := 0; i < 2; i++ {
		if err := Inject(path, []string{"acme/alpha", "acme/beta"}, Permissions{Permissions: "read"}); err != nil {
			t.Fatalf("Inject() iteration %d error: %v", i, err)
		}
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := Inject(path, []string{"acme/alpha", "acme/beta"}, Permissions{Permissions: "read"}); err != nil {
		t.Fatalf("Inject() third run error: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Errorf("re-running Inject produced a different document:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestStripJSONCPreservesStringContent(t *testing.T) {
	src := `{"a": "value with // not a comment", "b": 1, /* block */ "c": [1, 2,]}`
	out := stripJSONC(src)
	if !json.Valid([]byte(out)) {
		t.Fatalf("stripJSONC produced invalid JSON: %s", out)
	}
	if gjson.Get(out, "a").String() != "value with // not a comment" {
		t.Errorf("string content corrupted: %s", out)
	}
}
