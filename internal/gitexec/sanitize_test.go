package gitexec

import "testing"

func TestSanitizeArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"plain clone args", []string{"clone", "--single-branch", "--branch", "main", "--", "https://example.com/a.git", "a"}, false},
		{"command substitution", []string{"clone", "$(rm -rf /)"}, true},
		{"backtick injection", []string{"clone", "`whoami`"}, true},
		{"unsafe flag", []string{"--upload-pack=/bin/sh"}, true},
		{"semicolon", []string{"status; rm -rf /"}, true},
		{"empty args", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeArgs(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeBranchDirSegment(t *testing.T) {
	tests := []struct{ in, want string }{
		{"feature/x", "feature-x"},
		{"main", "main"},
		{"a/b/c", "a-b-c"},
	}
	for _, tt := range tests {
		if got := SanitizeBranchDirSegment(tt.in); got != tt.want {
			t.Errorf("SanitizeBranchDirSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateBranchName(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		wantErr bool
	}{
		{"simple", "main", false},
		{"slashed", "feature/x", false},
		{"empty", "", true},
		{"leading dot", ".hidden", true},
		{"double dot", "a..b", true},
		{"whitespace", "has space", true},
		{"lock suffix", "branch.lock", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBranchName(tt.branch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBranchName(%q) error = %v, wantErr %v", tt.branch, err, tt.wantErr)
			}
		})
	}
}
