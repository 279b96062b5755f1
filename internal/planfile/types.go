// Package planfile parses the repos.list plan file format: a line-oriented
// grammar of comments, global flags, and entry lines naming a remote, an
// optional ref, an optional explicit target, and flags.
package planfile

import "fmt"

// RawLine is one input line after comment stripping and whitespace
// trimming, retaining the original text for error messages.
type RawLine struct {
	Number int
	Text   string
}

// GlobalFlags is the set recognized at the top of the plan file.
type GlobalFlags struct {
	DefaultVisibility Visibility // public, private, or unset
	ForceWorktree     bool
	EnableCodespaces  bool
}

// Visibility is the effective or requested repository visibility.
type Visibility string

const (
	VisibilityUnset   Visibility = ""
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// RemoteKind discriminates the Remote variants from spec §3.
type RemoteKind string

const (
	RemoteOwnerRepo    RemoteKind = "OwnerRepo"
	RemoteFileURL      RemoteKind = "FileURL"
	RemoteAbsolutePath RemoteKind = "AbsolutePath"
	RemoteHTTPSGitHub  RemoteKind = "HttpsGithub"
	RemoteSSHGitHub    RemoteKind = "SshGithub"
	RemoteOther        RemoteKind = "OtherUrl"
)

// Remote is a validated remote specifier.
type Remote struct {
	Kind  RemoteKind
	Owner string // set for OwnerRepo, HttpsGithub, SshGithub
	Repo  string // set for OwnerRepo, HttpsGithub, SshGithub
	Path  string // set for FileURL, AbsolutePath
	Raw   string // the opaque original text, set for OtherUrl and used in errors
}

// IsForgeHosted reports whether Forge Client operations are valid for this
// remote (spec §3 invariant: only OwnerRepo/HttpsGithub/SshGithub are).
func (r Remote) IsForgeHosted() bool {
	switch r.Kind {
	case RemoteOwnerRepo, RemoteHTTPSGitHub, RemoteSSHGitHub:
		return true
	default:
		return false
	}
}

// Canonical returns the string used as the Pass-1 counting key: "owner/repo"
// for forge-hosted remotes, the absolute path otherwise.
func (r Remote) Canonical() string {
	if r.IsForgeHosted() {
		return fmt.Sprintf("%s/%s", r.Owner, r.Repo)
	}
	if r.Path != "" {
		return r.Path
	}
	return r.Raw
}

// BaseName returns the directory base name a clone of this remote would
// default to (e.g. "alpha" for "acme/alpha").
func (r Remote) BaseName() string {
	switch r.Kind {
	case RemoteOwnerRepo, RemoteHTTPSGitHub, RemoteSSHGitHub:
		return r.Repo
	default:
		return baseOf(r.Canonical())
	}
}

// EntryKind discriminates the two Entry variants from spec §3.
type EntryKind string

const (
	EntryClone    EntryKind = "Clone"
	EntryWorktree EntryKind = "Worktree"
)

// Flags are the per-line flag tokens recognized by the entry grammar.
type Flags struct {
	Public       bool
	Private      bool
	Worktree     bool
	NoWorktree   bool
	FetchAllRefs bool // -a
}

// Entry is one parsed plan item.
type Entry struct {
	Line RawLine
	Kind EntryKind

	// Clone fields.
	Remote Remote
	Ref    string // ref-suffix, optional
	Target string // explicit target, optional

	// Worktree fields (bare "@branch" lines).
	Branch string

	Flags Flags
}
