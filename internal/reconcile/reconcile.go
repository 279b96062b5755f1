// Package reconcile walks a resolved Plan in order, ensuring each action's
// remote and branch exist on the forge before materializing it locally
// (spec §4.5). Execution is strictly sequential: no action starts before the
// previous one's forge and Git steps have both finished.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/repoctl/repoctl/internal/forge"
	"github.com/repoctl/repoctl/internal/gitexec"
	"github.com/repoctl/repoctl/internal/plan"
	"github.com/repoctl/repoctl/internal/planfile"
)

// Logger is the minimal structured-logging surface the Reconciler needs.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Outcome classifies one action's result for the end-of-run tally.
type Outcome string

const (
	OutcomeCreated        Outcome = "created"
	OutcomeAlreadyExisted Outcome = "already-existed"
	OutcomeError          Outcome = "error"
	OutcomeSkipped        Outcome = "skipped"
)

// ActionResult is the per-action record the Reconciler produces.
type ActionResult struct {
	Action  plan.ResolvedAction
	Outcome Outcome
	Message string
	Err     error
}

// Tally aggregates ActionResults (spec §4.5 step 4).
type Tally struct {
	Created        int
	AlreadyExisted int
	Errors         int
	Skipped        int
}

// Failed reports whether the run should exit non-zero (spec §4.5: "returns a
// non-zero result iff the error tally is > 0").
func (t Tally) Failed() bool {
	return t.Errors > 0
}

// Options carries the per-invocation settings that affect remote creation.
type Options struct {
	// DefaultVisibility is the per-invocation default (spec §4.5 step 1); the
	// CLI's -p/--public flag sets this to Public, otherwise Private.
	DefaultVisibility forge.Visibility
	// Token authenticates HTTPS clone URLs when the remote is forge-hosted
	// and a credential is available (spec §4.1, §6).
	Token string
}

// Reconciler executes a Plan's actions in order.
type Reconciler struct {
	Driver *gitexec.Driver
	Forge  *forge.Client
	Logger Logger
	Opts   Options
}

// New builds a Reconciler.
func New(driver *gitexec.Driver, forgeClient *forge.Client, logger Logger, opts Options) *Reconciler {
	return &Reconciler{Driver: driver, Forge: forgeClient, Logger: logger, Opts: opts}
}

// Run walks p.Actions in order, returning the accumulated Tally and the
// per-action results. A failed action never aborts the run (spec §4.5
// failure policy); the caller inspects Tally.Failed() for the exit code.
func (r *Reconciler) Run(ctx context.Context, p plan.Plan) (Tally, []ActionResult) {
	var (
		tally   Tally
		results []ActionResult
	)

	for _, action := range p.Actions {
		res := r.executeAction(ctx, p.Flags, action)
		results = append(results, res)

		switch res.Outcome {
		case OutcomeCreated:
			tally.Created++
		case OutcomeAlreadyExisted:
			tally.AlreadyExisted++
		case OutcomeError:
			tally.Errors++
			r.Logger.Error("reconcile: %s: %v", action.Target, res.Err)
		case OutcomeSkipped:
			tally.Skipped++
		}
	}

	return tally, results
}

func (r *Reconciler) executeAction(ctx context.Context, flags planfile.GlobalFlags, action plan.ResolvedAction) ActionResult {
	switch action.Kind {
	case plan.ActionFullClone:
		return r.executeClone(ctx, flags, action, false)
	case plan.ActionSingleBranchClone:
		return r.executeClone(ctx, flags, action, true)
	case plan.ActionWorktreeAdd:
		return r.executeWorktreeAdd(ctx, action)
	case plan.ActionSkip:
		return ActionResult{Action: action, Outcome: OutcomeSkipped, Message: action.SkipReason}
	default:
		return ActionResult{Action: action, Outcome: OutcomeError, Err: fmt.Errorf("unknown action kind %q", action.Kind)}
	}
}

func (r *Reconciler) executeClone(ctx context.Context, flags planfile.GlobalFlags, action plan.ResolvedAction, singleBranch bool) ActionResult {
	if action.Remote.IsForgeHosted() {
		if err := r.ensureRemote(ctx, flags, action); err != nil {
			return ActionResult{Action: action, Outcome: OutcomeError,
				Err: fmt.Errorf("ensure remote %s: %w", action.Remote.Canonical(), err)}
		}
		if singleBranch {
			if err := r.ensureBranch(ctx, action.Remote, action.Ref); err != nil {
				r.Logger.Warn("ensure branch %s@%s: %v", action.Remote.Canonical(), action.Ref, err)
			}
		}
	}

	if r.Driver.IsValidRepo(action.Target) {
		origin, _ := r.Driver.RemoteOriginURL(ctx, action.Target)
		if originMatches(origin, action.Remote) {
			return ActionResult{Action: action, Outcome: OutcomeAlreadyExisted, Message: "existing clone matches expected origin"}
		}
		return ActionResult{Action: action, Outcome: OutcomeError,
			Err: fmt.Errorf("%s exists as a git repo with unexpected origin %q", action.Target, origin)}
	}

	if r.Driver.IsNonEmptyNonRepo(action.Target) {
		return ActionResult{Action: action, Outcome: OutcomeError,
			Err: fmt.Errorf("%s exists, is non-empty, and is not a git repository", action.Target)}
	}

	url := cloneURL(action.Remote, r.Opts.Token)

	var err error
	if singleBranch {
		err = r.Driver.CloneSingleBranch(ctx, url, action.Ref, action.Target)
	} else {
		err = r.Driver.CloneFull(ctx, url, action.Target, action.FetchAllRefs)
	}
	if err != nil {
		return ActionResult{Action: action, Outcome: OutcomeError, Err: err}
	}
	return ActionResult{Action: action, Outcome: OutcomeCreated, Message: "cloned " + action.Target}
}

func (r *Reconciler) executeWorktreeAdd(ctx context.Context, action plan.ResolvedAction) ActionResult {
	if action.BaseRemote.IsForgeHosted() {
		if err := r.ensureBranch(ctx, action.BaseRemote, action.Ref); err != nil {
			r.Logger.Warn("ensure branch %s@%s: %v", action.BaseRemote.Canonical(), action.Ref, err)
		}
	}

	entries, err := r.Driver.WorktreeList(ctx, action.BaseRepo)
	if err == nil {
		for _, e := range entries {
			if e.Path == action.Target && e.Branch == action.Ref {
				return ActionResult{Action: action, Outcome: OutcomeAlreadyExisted, Message: "worktree already present"}
			}
		}
	}

	if r.Driver.IsNonEmptyNonRepo(action.Target) {
		return ActionResult{Action: action, Outcome: OutcomeError,
			Err: fmt.Errorf("%s exists, is non-empty, and is not a git worktree", action.Target)}
	}

	if err := r.Driver.WorktreeAdd(ctx, action.BaseRepo, action.Ref, action.Target); err != nil {
		return ActionResult{Action: action, Outcome: OutcomeError, Err: err}
	}
	return ActionResult{Action: action, Outcome: OutcomeCreated, Message: "worktree added at " + action.Target}
}

// ensureRemote implements spec §4.5 step 1: repo_exists, then create_repo
// with the effective visibility if missing.
func (r *Reconciler) ensureRemote(ctx context.Context, flags planfile.GlobalFlags, action plan.ResolvedAction) error {
	if r.Forge == nil || r.Forge.ReadOnly() {
		return nil
	}

	owner, repo := action.Remote.Owner, action.Remote.Repo
	exists, err := r.Forge.RepoExists(ctx, owner, repo)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	kind, err := r.Forge.ClassifyOwner(ctx, owner)
	if err != nil {
		r.Logger.Warn("classify_owner %s: %v; skipping create_repo", owner, err)
		return err
	}
	if kind == forge.OwnerUnknown {
		r.Logger.Warn("classify_owner %s: owner type unknown; skipping create_repo", owner)
		return nil
	}

	vis := effectiveVisibility(action.SourceEntry.Flags, flags, r.Opts.DefaultVisibility)
	return r.Forge.CreateRepo(ctx, owner, repo, kind, vis)
}

// ensureBranch implements spec §4.5 step 2.
func (r *Reconciler) ensureBranch(ctx context.Context, remote planfile.Remote, branch string) error {
	if r.Forge == nil || r.Forge.ReadOnly() || !remote.IsForgeHosted() || branch == "" {
		return nil
	}

	exists, err := r.Forge.BranchExists(ctx, remote.Owner, remote.Repo, branch)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.Forge.CreateBranch(ctx, remote.Owner, remote.Repo, branch)
}

// effectiveVisibility resolves per-line flag > global flag > per-invocation
// default, with a hard default of private (spec §4.5 step 1).
func effectiveVisibility(lineFlags planfile.Flags, global planfile.GlobalFlags, invocationDefault forge.Visibility) forge.Visibility {
	switch {
	case lineFlags.Private:
		return forge.VisibilityPrivate
	case lineFlags.Public:
		return forge.VisibilityPublic
	case global.DefaultVisibility == planfile.VisibilityPublic:
		return forge.VisibilityPublic
	case global.DefaultVisibility == planfile.VisibilityPrivate:
		return forge.VisibilityPrivate
	case invocationDefault == forge.VisibilityPublic:
		return forge.VisibilityPublic
	default:
		return forge.VisibilityPrivate
	}
}

// cloneURL builds the URL passed to git clone, injecting a token for
// HTTPS-addressed forge remotes when one is available.
func cloneURL(remote planfile.Remote, token string) string {
	switch remote.Kind {
	case planfile.RemoteOwnerRepo, planfile.RemoteHTTPSGitHub:
		if token != "" {
			return fmt.Sprintf("https://%s@github.com/%s/%s.git", token, remote.Owner, remote.Repo)
		}
		return fmt.Sprintf("https://github.com/%s/%s.git", remote.Owner, remote.Repo)
	case planfile.RemoteSSHGitHub:
		return remote.Raw
	case planfile.RemoteFileURL:
		return "file://" + remote.Path
	case planfile.RemoteAbsolutePath:
		return remote.Path
	default:
		return remote.Raw
	}
}

// originMatches reports whether an existing clone's "git remote get-url
// origin" output is consistent with the remote the plan expects, tolerant of
// token injection and the trailing ".git" suffix.
func originMatches(origin string, remote planfile.Remote) bool {
	if origin == "" {
		return false
	}
	origin = strings.TrimSuffix(strings.TrimSpace(origin), ".git")

	switch remote.Kind {
	case planfile.RemoteOwnerRepo, planfile.RemoteHTTPSGitHub, planfile.RemoteSSHGitHub:
		return strings.HasSuffix(origin, remote.Owner+"/"+remote.Repo)
	case planfile.RemoteFileURL, planfile.RemoteAbsolutePath:
		return strings.TrimSuffix(origin, "/") == strings.TrimSuffix(remote.Path, "/")
	default:
		return origin == strings.TrimSuffix(remote.Raw, ".git")
	}
}
