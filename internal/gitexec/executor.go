// Package gitexec wraps the git CLI as a small set of typed operations,
// hiding raw subprocess handling from the rest of the reconciliation engine.
package gitexec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Executor runs git commands and captures their output.
type Executor struct {
	gitBinary string
	env       []string
	timeout   time.Duration
}

// Result holds the outcome of a single git invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithGitBinary overrides the git binary path (defaults to "git" on PATH).
func WithGitBinary(path string) Option {
	return func(e *Executor) { e.gitBinary = path }
}

// WithEnv appends environment variables to every invocation.
func WithEnv(env []string) Option {
	return func(e *Executor) { e.env = env }
}

// WithTimeout overrides the default per-command timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) { e.timeout = timeout }
}

// NewExecutor constructs an Executor with sane defaults.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{gitBinary: "git", timeout: 10 * time.Minute}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes git with sanitized args in dir and returns the raw result.
func (e *Executor) Run(ctx context.Context, dir string, args ...string) (*Result, error) {
	start := time.Now()

	sanitized, err := SanitizeArgs(args)
	if err != nil {
		return nil, fmt.Errorf("argument sanitization failed: %w", err)
	}

	cmdCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, e.gitBinary, sanitized...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), e.env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	execErr := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if execErr != nil {
		if exitError, ok := execErr.(*exec.ExitError); ok {
			exitCode = exitError.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: duration,
	}, nil
}

// RunOutput runs git and returns trimmed stdout, classifying failures into
// the GitError taxonomy.
func (e *Executor) RunOutput(ctx context.Context, dir string, args ...string) (string, error) {
	result, err := e.Run(ctx, dir, args...)
	if err != nil {
		return "", err
	}

	if result.ExitCode != 0 {
		return "", classify(args, result)
	}

	return strings.TrimSpace(result.Stdout), nil
}

// IsGitRepository reports whether dir itself contains a .git entry.
func (e *Executor) IsGitRepository(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Kind enumerates the Git Driver's structured error taxonomy (spec §4.2).
type Kind string

const (
	KindAuthRequired     Kind = "AuthRequired"
	KindNotEmpty         Kind = "NotEmpty"
	KindStaleWorktree    Kind = "StaleWorktree"
	KindRemoteUnreachable Kind = "RemoteUnreachable"
	KindRefNotFound      Kind = "RefNotFound"
	KindOther            Kind = "Other"
)

// GitError is a classified git command failure.
type GitError struct {
	Kind     Kind
	Command  string
	ExitCode int
	Stderr   string
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s: %s (exit %d)", e.Kind, e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += "\n" + strings.TrimSpace(e.Stderr)
	}
	return msg
}

func (e *GitError) Is(target error) bool {
	other, ok := target.(*GitError)
	if !ok {
		return false
	}
	return other.Kind == "" || other.Kind == e.Kind
}

// classify maps a failed git invocation onto the Driver's typed error
// taxonomy by inspecting stderr text, matching the patterns git itself
// emits for these well-known conditions.
func classify(args []string, result *Result) *GitError {
	stderr := strings.ToLower(result.Stderr)
	command := "git " + strings.Join(args, " ")

	switch {
	case strings.Contains(stderr, "authentication") || strings.Contains(stderr, "could not read username") ||
		strings.Contains(stderr, "permission denied (publickey)"):
		return &GitError{Kind: KindAuthRequired, Command: command, ExitCode: result.ExitCode, Stderr: result.Stderr}
	case strings.Contains(stderr, "already exists and is not an empty directory") ||
		strings.Contains(stderr, "destination path") && strings.Contains(stderr, "already exists"):
		return &GitError{Kind: KindNotEmpty, Command: command, ExitCode: result.ExitCode, Stderr: result.Stderr}
	case strings.Contains(stderr, "is not a working tree") || strings.Contains(stderr, "administrative files exist") ||
		strings.Contains(stderr, "missing but already registered"):
		return &GitError{Kind: KindStaleWorktree, Command: command, ExitCode: result.ExitCode, Stderr: result.Stderr}
	case strings.Contains(stderr, "could not resolve host") || strings.Contains(stderr, "could not read from remote") ||
		strings.Contains(stderr, "connection refused") || strings.Contains(stderr, "network"):
		return &GitError{Kind: KindRemoteUnreachable, Command: command, ExitCode: result.ExitCode, Stderr: result.Stderr}
	case strings.Contains(stderr, "couldn't find remote ref") || strings.Contains(stderr, "did not match any"):
		return &GitError{Kind: KindRefNotFound, Command: command, ExitCode: result.ExitCode, Stderr: result.Stderr}
	default:
		return &GitError{Kind: KindOther, Command: command, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
}
