package planfile

import (
	"strings"
	"testing"
)

func TestParseEntryGrammar(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantKind   EntryKind
		wantOwner  string
		wantRepo   string
		wantRef    string
		wantBranch string
		wantTarget string
	}{
		{"full clone", "acme/alpha", EntryClone, "acme", "alpha", "", "", ""},
		{"single branch clone", "acme/beta@main", EntryClone, "acme", "beta", "main", "", ""},
		{"explicit target", "acme/delta@slides slides", EntryClone, "acme", "delta", "slides", "", "slides"},
		{"bare worktree", "@dev", EntryWorktree, "", "", "", "dev", ""},
		{"bare worktree with target", "@data data", EntryWorktree, "", "", "", "data", "data"},
		{"slashed branch worktree", "@feature/x", EntryWorktree, "", "", "", "feature/x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, flags, errs := Parse(strings.NewReader(tt.line))
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			_ = flags
			e := entries[0]
			if e.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.wantKind)
			}
			if e.Remote.Owner != tt.wantOwner || e.Remote.Repo != tt.wantRepo {
				t.Errorf("Remote = %+v, want owner=%s repo=%s", e.Remote, tt.wantOwner, tt.wantRepo)
			}
			if e.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", e.Ref, tt.wantRef)
			}
			if e.Branch != tt.wantBranch {
				t.Errorf("Branch = %q, want %q", e.Branch, tt.wantBranch)
			}
			if e.Target != tt.wantTarget {
				t.Errorf("Target = %q, want %q", e.Target, tt.wantTarget)
			}
		})
	}
}

func TestParseCommentsAndBlanks(t *testing.T) {
	input := `# a comment
acme/alpha

  # indented comment
acme/beta@main # trailing comment
`
	entries, _, errs := Parse(strings.NewReader(input))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	input := `default-private
force-worktree
enable-codespaces
acme/alpha
`
	entries, flags, errs := Parse(strings.NewReader(input))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if flags.DefaultVisibility != VisibilityPrivate || !flags.ForceWorktree || !flags.EnableCodespaces {
		t.Errorf("flags = %+v, want private/force-worktree/enable-codespaces all set", flags)
	}
}

func TestParseFlags(t *testing.T) {
	entries, _, errs := Parse(strings.NewReader("acme/alpha --public -a"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	f := entries[0].Flags
	if !f.Public || !f.FetchAllRefs {
		t.Errorf("flags = %+v, want Public and FetchAllRefs set", f)
	}
}

func TestParseUnrecognizedRemote(t *testing.T) {
	_, _, errs := Parse(strings.NewReader("not a valid remote!!"))
	if len(errs) == 0 {
		t.Fatalf("expected a parse error")
	}
}

func TestParseUnknownFlagIgnored(t *testing.T) {
	entries, _, errs := Parse(strings.NewReader("acme/alpha --unknown-flag"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestRemoteCanonicalAndBaseName(t *testing.T) {
	r := Remote{Kind: RemoteOwnerRepo, Owner: "acme", Repo: "alpha"}
	if r.Canonical() != "acme/alpha" {
		t.Errorf("Canonical() = %q", r.Canonical())
	}
	if r.BaseName() != "alpha" {
		t.Errorf("BaseName() = %q", r.BaseName())
	}
	if !r.IsForgeHosted() {
		t.Errorf("expected OwnerRepo to be forge-hosted")
	}

	other := Remote{Kind: RemoteOther, Raw: "https://example.com/x.git"}
	if other.IsForgeHosted() {
		t.Errorf("expected OtherUrl to not be forge-hosted")
	}
}
