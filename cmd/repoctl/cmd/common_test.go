package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePlanFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	if _, err := resolvePlanFile(""); err == nil {
		t.Error("expected an error when no plan file exists")
	}

	if err := os.WriteFile(filepath.Join(dir, "repos-to-clone.list"), []byte("acme/alpha\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := resolvePlanFile("")
	if err != nil || got != "repos-to-clone.list" {
		t.Errorf("resolvePlanFile() = %q, %v; want repos-to-clone.list, nil", got, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "repos.list"), []byte("acme/alpha\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = resolvePlanFile("")
	if err != nil || got != "repos.list" {
		t.Errorf("resolvePlanFile() = %q, %v; want repos.list (preferred over repos-to-clone.list)", got, err)
	}

	got, err = resolvePlanFile("explicit.list")
	if err != nil || got != "explicit.list" {
		t.Errorf("resolvePlanFile(explicit) = %q, %v; want explicit.list, nil", got, err)
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "alpha", []string{"alpha"}},
		{"multiple", "alpha,beta,gamma", []string{"alpha", "beta", "gamma"}},
		{"with spaces", "alpha, beta , gamma", []string{"alpha", "beta", "gamma"}},
		{"empty parts", "alpha,,beta", []string{"alpha", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitCSV(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitCSV(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitCSV(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
