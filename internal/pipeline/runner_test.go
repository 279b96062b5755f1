package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func TestRunnerSuccessAndFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require a POSIX shell")
	}

	root := t.TempDir()
	okDir := filepath.Join(root, "alpha")
	failDir := filepath.Join(root, "beta")
	if err := os.MkdirAll(okDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(failDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeScript(t, okDir, "run.sh", "#!/bin/sh\nexit 0\n")
	writeScript(t, failDir, "run.sh", "#!/bin/sh\nexit 7\n")

	var stdout, stderr bytes.Buffer
	r := New(nopLogger{}, &stdout, &stderr)

	entries := []Entry{{Dir: okDir}, {Dir: failDir}}
	results, err := r.Run(context.Background(), entries, Options{DefaultScript: "run.sh", ContinueOnError: true})
	if err == nil {
		t.Fatalf("expected an error because one entry failed")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Outcome != OutcomeSuccess {
		t.Errorf("results[0].Outcome = %v, want success", results[0].Outcome)
	}
	if results[1].Outcome != OutcomeFailed || results[1].ExitCode != 7 {
		t.Errorf("results[1] = %+v, want failed/exit 7", results[1])
	}
}

func TestRunnerAbortsOnFirstFailureByDefault(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require a POSIX shell")
	}

	root := t.TempDir()
	failDir := filepath.Join(root, "beta")
	neverRunDir := filepath.Join(root, "gamma")
	if err := os.MkdirAll(failDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(neverRunDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeScript(t, failDir, "run.sh", "#!/bin/sh\nexit 3\n")
	writeScript(t, neverRunDir, "run.sh", "#!/bin/sh\nexit 0\n")

	var stdout, stderr bytes.Buffer
	r := New(nopLogger{}, &stdout, &stderr)

	entries := []Entry{{Dir: failDir}, {Dir: neverRunDir}}
	results, err := r.Run(context.Background(), entries, Options{DefaultScript: "run.sh"})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if len(results) != 1 {
		t.Fatalf("expected the run to stop after the first failure, got %d results", len(results))
	}
}

func TestRunnerFilteringAndMissingAndNoScript(t *testing.T) {
	root := t.TempDir()
	included := filepath.Join(root, "included")
	excluded := filepath.Join(root, "excluded")
	missing := filepath.Join(root, "missing")
	noScript := filepath.Join(root, "noscript")
	for _, d := range []string{included, excluded, noScript} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeScript(t, included, "run.sh", "#!/bin/sh\nexit 0\n")
	writeScript(t, excluded, "run.sh", "#!/bin/sh\nexit 0\n")

	var stdout, stderr bytes.Buffer
	r := New(nopLogger{}, &stdout, &stderr)

	entries := []Entry{{Dir: included}, {Dir: excluded}, {Dir: missing}, {Dir: noScript}}
	results, err := r.Run(context.Background(), entries, Options{
		DefaultScript:   "run.sh",
		Exclude:         []string{"excluded"},
		ContinueOnError: true,
	})
	if err != nil {
		if runtime.GOOS != "windows" {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	byDir := map[string]Result{}
	for _, r := range results {
		byDir[filepath.Base(r.Dir)] = r
	}

	if byDir["excluded"].Outcome != OutcomeFiltered {
		t.Errorf("excluded outcome = %v, want filtered", byDir["excluded"].Outcome)
	}
	if byDir["missing"].Outcome != OutcomeMissing {
		t.Errorf("missing outcome = %v, want missing", byDir["missing"].Outcome)
	}
	if byDir["noscript"].Outcome != OutcomeNoScript {
		t.Errorf("noscript outcome = %v, want no-script", byDir["noscript"].Outcome)
	}
}

func TestRunnerDryRunDoesNotExecute(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "alpha")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(dir, "marker")
	writeScript(t, dir, "run.sh", "#!/bin/sh\ntouch "+marker+"\n")

	var stdout, stderr bytes.Buffer
	r := New(nopLogger{}, &stdout, &stderr)

	results, err := r.Run(context.Background(), []Entry{{Dir: dir}}, Options{DefaultScript: "run.sh", DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Outcome != OutcomeDryRun {
		t.Errorf("Outcome = %v, want dry-run", results[0].Outcome)
	}
	if _, statErr := os.Stat(marker); statErr == nil {
		t.Errorf("dry-run must not execute the script")
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Outcome: OutcomeSuccess},
		{Outcome: OutcomeFailed},
		{Outcome: OutcomeFiltered},
		{Outcome: OutcomeMissing},
		{Outcome: OutcomeNoScript},
	}
	tally := Summarize(results)
	if tally.Total != 5 || tally.Succeeded != 1 || tally.Failed != 1 || tally.Skipped != 3 {
		t.Errorf("tally = %+v", tally)
	}
}

func TestPrintSummaryFormat(t *testing.T) {
	var buf bytes.Buffer
	results := []Result{
		{Dir: "alpha", Script: "run.sh", Outcome: OutcomeSuccess},
		{Dir: "beta", Script: "run.sh", Outcome: OutcomeFailed, ExitCode: 2},
		{Dir: "gamma", Script: "run.sh", Outcome: OutcomeNoScript},
	}
	PrintSummary(&buf, results)
	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("=== Pipeline Summary ===")) {
		t.Errorf("missing header, got: %s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Total: 3 repositories | 1 succeeded | 1 failed | 1 skipped")) {
		t.Errorf("missing/incorrect total line, got: %s", out)
	}
}
