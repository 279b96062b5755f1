package pipeline

import (
	"strings"
	"testing"
)

func TestParseConcisePlan(t *testing.T) {
	input := "# a comment\n\nalpha\nbeta deploy.sh\n  gamma   # trailing comment\n"
	entries := ParseConcisePlan(strings.NewReader(input))

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Dir != "alpha" || entries[0].ScriptOverride != "" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Dir != "beta" || entries[1].ScriptOverride != "deploy.sh" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
	if entries[2].Dir != "gamma" || entries[2].ScriptOverride != "" {
		t.Errorf("entries[2] = %+v", entries[2])
	}
}

func TestEntriesFromDirs(t *testing.T) {
	entries := EntriesFromDirs([]string{"/p/alpha", "/p/beta"})
	if len(entries) != 2 || entries[0].Dir != "/p/alpha" || entries[1].Dir != "/p/beta" {
		t.Errorf("entries = %+v", entries)
	}
}
