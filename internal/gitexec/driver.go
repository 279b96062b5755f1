package gitexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Driver presents Git as the small set of typed operations the Planner's
// ResolvedAction kinds map onto directly: full clone, single-branch clone,
// and linked worktrees.
type Driver struct {
	exec *Executor
}

// NewDriver wraps an Executor as a Driver.
func NewDriver(exec *Executor) *Driver {
	return &Driver{exec: exec}
}

// WorktreeEntry describes one row of `git worktree list`.
type WorktreeEntry struct {
	Path   string
	Branch string
}

// CloneFull clones remoteURL into target as an ordinary full clone.
func (d *Driver) CloneFull(ctx context.Context, remoteURL, target string, fetchAllRefs bool) error {
	args := []string{"clone", "--", remoteURL, target}
	_, err := d.exec.RunOutput(ctx, "", args...)
	if err != nil {
		return err
	}
	if fetchAllRefs {
		if _, err := d.exec.RunOutput(ctx, target, "config", "remote.origin.fetch", "+refs/heads/*:refs/remotes/origin/*"); err != nil {
			return fmt.Errorf("widen fetch refspec: %w", err)
		}
		if _, err := d.exec.RunOutput(ctx, target, "fetch", "origin"); err != nil {
			return fmt.Errorf("fetch all refs: %w", err)
		}
	}
	return nil
}

// CloneSingleBranch clones only ref from remoteURL into target, then widens
// the fetch refspec with a wildcard so later worktree_add calls against this
// base can still resolve other branches (spec §4.2). Tracking-setup errors
// from the widen step are non-fatal.
func (d *Driver) CloneSingleBranch(ctx context.Context, remoteURL, ref, target string) error {
	args := []string{"clone", "--single-branch", "--branch", ref, "--", remoteURL, target}
	if _, err := d.exec.RunOutput(ctx, "", args...); err != nil {
		return err
	}

	_, _ = d.exec.RunOutput(ctx, target, "config", "--add", "remote.origin.fetch", "+refs/heads/*:refs/remotes/origin/*")
	return nil
}

// WorktreeAdd adds a linked worktree of baseRepo at target on branch. Per
// spec §4.2 it always prunes stale worktree registrations first, and if the
// add still fails because of a stale registration it prunes once more and
// retries exactly once.
func (d *Driver) WorktreeAdd(ctx context.Context, baseRepo, branch, target string) error {
	if err := ValidateBranchName(branch); err != nil {
		return err
	}

	if _, err := d.exec.RunOutput(ctx, baseRepo, "worktree", "prune"); err != nil {
		return fmt.Errorf("worktree prune: %w", err)
	}

	_, err := d.exec.RunOutput(ctx, baseRepo, "worktree", "add", target, branch)
	if err == nil {
		return nil
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) && gitErr.Kind == KindStaleWorktree {
		if _, pruneErr := d.exec.RunOutput(ctx, baseRepo, "worktree", "prune"); pruneErr != nil {
			return fmt.Errorf("worktree prune retry: %w", pruneErr)
		}
		if _, retryErr := d.exec.RunOutput(ctx, baseRepo, "worktree", "add", target, branch); retryErr != nil {
			return fmt.Errorf("worktree add after prune retry: %w", retryErr)
		}
		return nil
	}

	return err
}

// WorktreeList reports the registered worktrees of repo.
func (d *Driver) WorktreeList(ctx context.Context, repo string) ([]WorktreeEntry, error) {
	out, err := d.exec.RunOutput(ctx, repo, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}

	var entries []WorktreeEntry
	var cur WorktreeEntry
	flush := func() {
		if cur.Path != "" {
			entries = append(entries, cur)
		}
		cur = WorktreeEntry{}
	}
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "branch "):
			cur.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		}
	}
	flush()

	return entries, nil
}

// WorktreePrune purges stale worktree registrations on repo.
func (d *Driver) WorktreePrune(ctx context.Context, repo string) error {
	_, err := d.exec.RunOutput(ctx, repo, "worktree", "prune")
	return err
}

// BranchExistsOnRemote checks a remote ref directly via ls-remote, used when
// the Forge Client is in read-only-local mode.
func (d *Driver) BranchExistsOnRemote(ctx context.Context, remoteURL, branch string) bool {
	out, err := d.exec.RunOutput(ctx, "", "ls-remote", "--heads", remoteURL, branch)
	return err == nil && strings.TrimSpace(out) != ""
}

// RemoteOriginURL returns the origin remote URL of repo, or "" if unset.
func (d *Driver) RemoteOriginURL(ctx context.Context, repo string) (string, error) {
	if !d.exec.IsGitRepository(repo) {
		return "", nil
	}
	out, err := d.exec.RunOutput(ctx, repo, "remote", "get-url", "origin")
	if err != nil {
		var gitErr *GitError
		if errors.As(err, &gitErr) {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// DefaultBranch returns the repo's current branch (HEAD).
func (d *Driver) DefaultBranch(ctx context.Context, repo string) (string, error) {
	return d.exec.RunOutput(ctx, repo, "rev-parse", "--abbrev-ref", "HEAD")
}

// IsValidRepo reports whether dir is a directory containing a .git entry.
func (d *Driver) IsValidRepo(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	return d.exec.IsGitRepository(dir)
}

// IsNonEmptyNonRepo reports whether dir exists, is non-empty, and is not a
// git repository — the "NotEmpty" idempotence case from spec §4.5.
func (d *Driver) IsNonEmptyNonRepo(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	if d.exec.IsGitRepository(dir) {
		return false
	}
	return len(entries) > 0
}
