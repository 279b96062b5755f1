package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/repoctl/repoctl/internal/plan"
	"github.com/repoctl/repoctl/internal/reconcile"
)

func TestRunSetup_RejectsUnknownFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code, err := runSetup(nil, setupOptions{
		PlanPath: "does-not-matter.list",
		Format:   "xml",
		Stdout:   &stdout,
		Stderr:   &stderr,
	})
	if err == nil {
		t.Fatal("expected an error for an unsupported --format value")
	}
	if code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
}

func TestWriteReconcileReportJSON(t *testing.T) {
	results := []reconcile.ActionResult{
		{Action: plan.ResolvedAction{Target: "/p/alpha"}, Outcome: reconcile.OutcomeCreated, Message: "cloned /p/alpha"},
		{Action: plan.ResolvedAction{Target: "/p/beta"}, Outcome: reconcile.OutcomeError, Err: errFixture("boom")},
	}
	tally := reconcile.Tally{Created: 1, Errors: 1}

	var buf bytes.Buffer
	if err := writeReconcileReportJSON(&buf, results, tally, false); err != nil {
		t.Fatalf("writeReconcileReportJSON() error = %v", err)
	}

	var report jsonReconcileReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal report: %v (body: %s)", err, buf.String())
	}
	if report.Created != 1 || report.Errors != 1 {
		t.Errorf("report tally = %+v", report)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Results[1].Error != "boom" {
		t.Errorf("Results[1].Error = %q, want %q", report.Results[1].Error, "boom")
	}
}

type errFixture string

func (e errFixture) Error() string { return string(e) }
