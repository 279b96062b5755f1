package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// Logger is the minimal structured-logging surface the Runner needs.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// Runner executes a script per directory, streaming its output to Stdout and
// Stderr (spec §4.6 step 6).
type Runner struct {
	Logger Logger
	Stdout io.Writer
	Stderr io.Writer
}

// New builds a Runner with the given output streams, defaulting to the
// process's own stdout/stderr if nil.
func New(logger Logger, stdout, stderr io.Writer) *Runner {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Runner{Logger: logger, Stdout: stdout, Stderr: stderr}
}

// Run processes entries in order per spec §4.6 and the continuation policy:
// by default the first failure aborts the run (its exit code is returned as
// err), while opts.ContinueOnError processes every entry and returns an
// error iff any entry failed.
func (r *Runner) Run(ctx context.Context, entries []Entry, opts Options) ([]Result, error) {
	include := toSet(opts.Include)
	exclude := toSet(opts.Exclude)

	var results []Result
	var firstFailureExit int
	anyFailed := false

	for _, e := range entries {
		base := filepath.Base(e.Dir)

		if len(include) > 0 && !include[base] {
			results = append(results, Result{Dir: e.Dir, Outcome: OutcomeFiltered})
			continue
		}
		if len(exclude) > 0 && exclude[base] {
			results = append(results, Result{Dir: e.Dir, Outcome: OutcomeFiltered})
			continue
		}

		info, err := os.Stat(e.Dir)
		if err != nil || !info.IsDir() {
			results = append(results, Result{Dir: e.Dir, Outcome: OutcomeMissing})
			continue
		}

		script := e.ScriptOverride
		if script == "" {
			script = opts.DefaultScript
		}
		scriptPath := filepath.Join(e.Dir, script)

		if _, err := os.Stat(scriptPath); err != nil {
			results = append(results, Result{Dir: e.Dir, Script: script, Outcome: OutcomeNoScript})
			continue
		}

		if opts.DryRun {
			r.Logger.Info("dry-run: would execute %s in %s", script, e.Dir)
			results = append(results, Result{Dir: e.Dir, Script: script, Outcome: OutcomeDryRun})
			continue
		}

		_ = os.Chmod(scriptPath, 0o755)

		res := r.runOne(ctx, e.Dir, script, scriptPath)
		results = append(results, res)

		if res.Outcome == OutcomeFailed {
			anyFailed = true
			if !opts.ContinueOnError {
				firstFailureExit = res.ExitCode
				return results, fmt.Errorf("%s/%s failed with exit code %d", e.Dir, script, firstFailureExit)
			}
		}
	}

	if anyFailed {
		return results, fmt.Errorf("one or more pipeline entries failed")
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, dir, script, scriptPath string) Result {
	cmd := exec.CommandContext(ctx, scriptPath)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return Result{Dir: dir, Script: script, Outcome: OutcomeFailed, ExitCode: exitCode, Err: err}
	}
	return Result{Dir: dir, Script: script, Outcome: OutcomeSuccess}
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}
