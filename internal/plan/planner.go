package plan

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/repoctl/repoctl/internal/gitexec"
	"github.com/repoctl/repoctl/internal/planfile"
)

// Context carries the workspace paths and initial fallback state the
// Planner needs beyond the parsed entries and flags.
type Context struct {
	// ParentDir is the absolute directory every target resolves against —
	// the OS-level parent of the working directory (spec §3).
	ParentDir string

	// InitialFallback seeds FallbackRepo from the working directory's own
	// origin remote, if any (spec §4.4 initialization).
	InitialFallback FallbackRepo

	// WorkingDirName is the base name of the directory repoctl was invoked
	// from. Default (no explicit target) worktree naming anchors on this,
	// constant for the whole run, rather than on the FallbackRepo's
	// currently-active path — see the worked examples in spec §8 (Scenarios
	// A/E/F all name the worktree "w-<branch>" off a /w working directory,
	// never "<last-cloned-repo>-<branch>"), and DESIGN.md resolution (d) for why the
	// literal §4.4 prose formula ("base-name-of-FallbackRepo.path") is read
	// this way.
	WorkingDirName string

	// Driver runs the ls-remote reachability check a per-line --worktree
	// conversion requires (spec §4.4: "...provided the ref is reachable from
	// that base"). A nil Driver (as in plan package unit tests, which have no
	// network or filesystem access) disables the check and preserves the
	// prior unconditional-conversion behavior.
	Driver *gitexec.Driver
}

// DiscoverInitialFallback inspects workingDir with driver and builds the
// Planner's initial FallbackRepo: set if workingDir is a valid repo with an
// origin remote resolvable to a Remote, unset otherwise.
func DiscoverInitialFallback(ctx context.Context, driver *gitexec.Driver, workingDir string) FallbackRepo {
	if !driver.IsValidRepo(workingDir) {
		return FallbackRepo{}
	}
	url, err := driver.RemoteOriginURL(ctx, workingDir)
	if err != nil || url == "" {
		return FallbackRepo{}
	}
	remote, err := planfile.ParseRemote(url)
	if err != nil {
		return FallbackRepo{}
	}
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return FallbackRepo{}
	}
	return FallbackRepo{Set: true, Remote: remote, Path: abs}
}

// Resolve runs both Planner passes over entries and produces a Plan, or a
// non-empty list of plan errors if any line cannot be resolved. Per spec
// §4.4/§7, plan errors abort the whole run before any filesystem mutation,
// so the caller must check len(errs) == 0 before reconciling. execCtx is used
// only for the per-line --worktree reachability check against pctx.Driver.
func Resolve(execCtx context.Context, entries []planfile.Entry, flags planfile.GlobalFlags, pctx Context) (Plan, []error) {
	refCounts := countCanonicalReferences(entries)

	var (
		actions     []ResolvedAction
		errs        []error
		diagnostics []string
		seen        = make(map[string]int) // target -> line number, for no-overwrite check
		fallback    = pctx.InitialFallback
	)

	addAction := func(a ResolvedAction, line int) {
		if a.Target != "" {
			if prevLine, dup := seen[a.Target]; dup {
				errs = append(errs, &Error{Line: line, Detail: fmt.Sprintf(
					"repos.list:%d: duplicate target path %q (first used at line %d)", line, a.Target, prevLine)})
				return
			}
			seen[a.Target] = line
		}
		actions = append(actions, a)
	}

	for _, entry := range entries {
		line := entry.Line.Number

		switch entry.Kind {
		case planfile.EntryClone:
			if entry.Ref == "" {
				target := pctx.resolveTarget(entry.Target, entry.Remote.BaseName())
				action := ResolvedAction{
					Kind:         ActionFullClone,
					Remote:       entry.Remote,
					Target:       target,
					FetchAllRefs: entry.Flags.FetchAllRefs,
					SourceEntry:  entry,
				}
				addAction(action, line)
				fallback = FallbackRepo{Set: true, Remote: entry.Remote, Path: target}
				continue
			}

			// Single-branch clone (or, with --worktree, a WorktreeAdd against
			// the current fallback — see spec §4.4 global --worktree rule and
			// SPEC_FULL.md §9(a) for the precedence this implementation picked).
			// The conversion only holds if entry.Ref is reachable from the
			// fallback's remote; otherwise it falls back to SingleBranchClone
			// below and the miss is recorded as a diagnostic (spec §4.4).
			if entry.Flags.Worktree && fallback.Set {
				if refReachable(execCtx, pctx.Driver, fallback.Remote, entry.Ref) {
					target := pctx.resolveTarget(entry.Target, pctx.WorkingDirName+"-"+gitexec.SanitizeBranchDirSegment(entry.Ref))
					action := ResolvedAction{
						Kind:        ActionWorktreeAdd,
						Ref:         entry.Ref,
						Target:      target,
						BaseRepo:    fallback.Path,
						BaseRemote:  fallback.Remote,
						SourceEntry: entry,
					}
					addAction(action, line)
					// Per spec §4.4, only Clone-variant entries update FallbackRepo
					// to (remote, target); a worktree-add keeps it unchanged.
					continue
				}
				diagnostics = append(diagnostics, fmt.Sprintf(
					"repos.list:%d: --worktree requested for %q but it is not reachable from %s; falling back to a single-branch clone",
					line, entry.Ref, fallback.Remote.Canonical()))
			}

			suffix := refCounts[entry.Remote.Canonical()] >= 2 || flags.ForceWorktree
			var target string
			if entry.Target != "" {
				target = pctx.resolveTarget(entry.Target, "")
			} else if suffix {
				target = pctx.resolveTarget("", entry.Remote.BaseName()+"-"+gitexec.SanitizeBranchDirSegment(entry.Ref))
			} else {
				target = pctx.resolveTarget("", entry.Remote.BaseName())
			}

			action := ResolvedAction{
				Kind:        ActionSingleBranchClone,
				Remote:      entry.Remote,
				Ref:         entry.Ref,
				Target:      target,
				SourceEntry: entry,
			}
			addAction(action, line)
			fallback = FallbackRepo{Set: true, Remote: entry.Remote, Path: target}

		case planfile.EntryWorktree:
			if !fallback.Set {
				errs = append(errs, &Error{Line: line, Detail: fmt.Sprintf(
					"repos.list:%d: bare '@%s' line has no fallback repository in scope", line, entry.Branch)})
				continue
			}

			if entry.Flags.NoWorktree {
				target := pctx.resolveTarget(entry.Target, fallback.Remote.BaseName()+"-"+gitexec.SanitizeBranchDirSegment(entry.Branch))
				action := ResolvedAction{
					Kind:        ActionSingleBranchClone,
					Remote:      fallback.Remote,
					Ref:         entry.Branch,
					Target:      target,
					SourceEntry: entry,
				}
				addAction(action, line)
				// FallbackRepo is not updated (spec §4.4).
				continue
			}

			target := pctx.resolveTarget(entry.Target, pctx.WorkingDirName+"-"+gitexec.SanitizeBranchDirSegment(entry.Branch))
			action := ResolvedAction{
				Kind:        ActionWorktreeAdd,
				Ref:         entry.Branch,
				Target:      target,
				BaseRepo:    fallback.Path,
				BaseRemote:  fallback.Remote,
				SourceEntry: entry,
			}
			addAction(action, line)
			// FallbackRepo is not updated (spec §4.4).
		}
	}

	if len(errs) > 0 {
		return Plan{}, errs
	}

	return Plan{Actions: actions, Flags: flags, Diagnostics: diagnostics}, nil
}

// resolveTarget joins the parent dir with either the explicit target or a
// default base name, producing an absolute path.
func (c Context) resolveTarget(explicit, defaultBase string) string {
	name := explicit
	if name == "" {
		name = defaultBase
	}
	return filepath.Join(c.ParentDir, name)
}

// refReachable reports whether ref exists on remote's branch listing, via
// ls-remote against driver (spec §4.4: "provided the ref is reachable from
// that base"). A nil driver — the case in tests that construct a Context
// without one — skips the check and reports reachable, so existing
// network-free callers keep the prior unconditional-conversion behavior.
func refReachable(ctx context.Context, driver *gitexec.Driver, remote planfile.Remote, ref string) bool {
	if driver == nil {
		return true
	}
	url := remoteFetchURL(remote)
	if url == "" {
		return true
	}
	return driver.BranchExistsOnRemote(ctx, url, ref)
}

// remoteFetchURL builds the URL passed to ls-remote for a reachability
// check. It mirrors reconcile.cloneURL but never injects a token: the
// Planner resolves before any forge credential is loaded (spec §4.4 runs
// ahead of §4.5's Reconciler), so the check only succeeds for remotes
// reachable without authentication.
func remoteFetchURL(remote planfile.Remote) string {
	switch remote.Kind {
	case planfile.RemoteOwnerRepo, planfile.RemoteHTTPSGitHub:
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

// countCanonicalReferences implements Pass 1: a multiset of canonical
// remotes referenced by all Clone-variant entries. Bare "@branch" lines are
// not counted (spec §4.4).
func countCanonicalReferences(entries []planfile.Entry) map[string]int {
	counts := make(map[string]int)
	for _, entry := range entries {
		if entry.Kind != planfile.EntryClone {
			continue
		}
		counts[entry.Remote.Canonical()]++
	}
	return counts
}
