// Package plan resolves parsed planfile.Entry values into concrete
// filesystem actions: the two-pass Planner from spec §4.4.
package plan

import "github.com/repoctl/repoctl/internal/planfile"

// ActionKind discriminates ResolvedAction variants (spec §3).
type ActionKind string

const (
	ActionFullClone         ActionKind = "FullClone"
	ActionSingleBranchClone ActionKind = "SingleBranchClone"
	ActionWorktreeAdd       ActionKind = "WorktreeAdd"
	ActionSkip              ActionKind = "Skip"
)

// ResolvedAction is the Planner's output, one per Entry.
type ResolvedAction struct {
	Kind ActionKind

	Remote       planfile.Remote
	Ref          string // branch/ref for SingleBranchClone and WorktreeAdd
	Target       string // absolute path
	FetchAllRefs bool   // FullClone only

	BaseRepo   string          // absolute path, WorktreeAdd only
	BaseRemote planfile.Remote // the base repo's remote, WorktreeAdd only — lets the Reconciler run branch_exists/create_branch against the right owner/repo

	SkipReason string // ActionSkip only

	// SourceEntry links back to the originating entry for forge-visibility
	// decisions in the Reconciler (per-line flags override global flags).
	SourceEntry planfile.Entry
}

// FallbackRepo is the current context for bare "@branch" lines.
type FallbackRepo struct {
	Set    bool
	Remote planfile.Remote
	Path   string // absolute path of the materialized directory
}

// Plan is the ordered sequence of ResolvedAction plus the GlobalFlags it was
// resolved under.
type Plan struct {
	Actions []ResolvedAction
	Flags   planfile.GlobalFlags

	// Diagnostics holds non-fatal notices recorded during resolution, such as
	// a per-line --worktree request that fell back to SingleBranchClone
	// because the ref was not reachable from its base (spec §4.4).
	Diagnostics []string
}

// Error is a plan-stage error produced by Resolve: a duplicate target path or
// a bare "@branch" line with no fallback repository. Unrecognized entry lines
// are reported earlier, as planfile.ParseError. Plan errors abort the run
// before any filesystem mutation.
type Error struct {
	Line   int
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}
