package planfile

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
)

// ParseError reports a plan-file line that could not be parsed, keeping the
// offending line number and raw text for the caller to report verbatim.
type ParseError struct {
	Line    int
	Content string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("repos.list:%d: %s (line: %q)", e.Line, e.Reason, e.Content)
}

var ownerRepoPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)
var sshGitHubPattern = regexp.MustCompile(`^git@([^:]+):(.+)$`)

// Parse reads a plan file and returns its entries and global flags. Parse
// errors are returned as a joined list via ParseError; the caller (Planner)
// treats any non-empty error list as fatal before any filesystem mutation.
func Parse(r io.Reader) ([]Entry, GlobalFlags, []error) {
	var (
		entries []Entry
		flags   GlobalFlags
		errs    []error
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		stripped := stripComment(raw)
		trimmed := strings.TrimSpace(stripped)

		if trimmed == "" {
			continue
		}

		rawLine := RawLine{Number: lineNo, Text: raw}

		if isGlobalFlagLine(trimmed, &flags) {
			continue
		}

		entry, err := parseEntry(rawLine, trimmed)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("reading plan file: %w", err))
	}

	return entries, flags, errs
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// isGlobalFlagLine recognizes a line consisting solely of one global-flag
// token (spec §4.3 class 3). Mutates flags and returns true on a match.
func isGlobalFlagLine(trimmed string, flags *GlobalFlags) bool {
	switch trimmed {
	case "default-public":
		flags.DefaultVisibility = VisibilityPublic
		return true
	case "default-private":
		flags.DefaultVisibility = VisibilityPrivate
		return true
	case "force-worktree":
		flags.ForceWorktree = true
		return true
	case "enable-codespaces":
		flags.EnableCodespaces = true
		return true
	default:
		return false
	}
}

// parseEntry parses an entry line per the grammar in spec §4.3:
//
//	entry := remote [ref-suffix] [target] [flag]*
//	      |  '@' branch [target] [flag]*
func parseEntry(rawLine RawLine, trimmed string) (Entry, error) {
	tokens := strings.Fields(trimmed)
	if len(tokens) == 0 {
		return Entry{}, &ParseError{Line: rawLine.Number, Content: rawLine.Text, Reason: "empty entry"}
	}

	first := tokens[0]
	rest := tokens[1:]

	if strings.HasPrefix(first, "@") {
		branch := strings.TrimPrefix(first, "@")
		if branch == "" {
			return Entry{}, &ParseError{Line: rawLine.Number, Content: rawLine.Text, Reason: "empty branch name after '@'"}
		}
		target, flags := splitTargetAndFlags(rest)
		return Entry{
			Line:   rawLine,
			Kind:   EntryWorktree,
			Branch: branch,
			Target: target,
			Flags:  flags,
		}, nil
	}

	remoteToken := first
	ref := ""
	if idx := strings.LastIndexByte(remoteToken, '@'); idx > 0 && !strings.HasPrefix(remoteToken, "git@") {
		ref = remoteToken[idx+1:]
		remoteToken = remoteToken[:idx]
	} else if idx := strings.LastIndexByte(remoteToken, '@'); idx > 0 && strings.HasPrefix(remoteToken, "git@") {
		// git@host:path[@ref] — only treat a second '@' after the first as a ref suffix.
		if strings.Count(remoteToken, "@") > 1 {
			ref = remoteToken[idx+1:]
			remoteToken = remoteToken[:idx]
		}
	}

	remote, err := parseRemote(remoteToken)
	if err != nil {
		return Entry{}, &ParseError{Line: rawLine.Number, Content: rawLine.Text, Reason: err.Error()}
	}

	target, flags := splitTargetAndFlags(rest)

	return Entry{
		Line:   rawLine,
		Kind:   EntryClone,
		Remote: remote,
		Ref:    ref,
		Target: target,
		Flags:  flags,
	}, nil
}

// splitTargetAndFlags consumes the remaining tokens after the remote/branch
// token: at most one bare (non-flag) token is the explicit target, and any
// token starting with '-' is a flag.
func splitTargetAndFlags(tokens []string) (string, Flags) {
	var flags Flags
	target := ""

	for _, tok := range tokens {
		switch tok {
		case "--public":
			flags.Public = true
		case "--private":
			flags.Private = true
		case "--worktree":
			flags.Worktree = true
		case "--no-worktree":
			flags.NoWorktree = true
		case "-a":
			flags.FetchAllRefs = true
		default:
			if strings.HasPrefix(tok, "-") {
				// Unknown flags on entry lines are silently ignored (spec §4.3).
				continue
			}
			if target == "" {
				target = tok
			}
		}
	}

	return target, flags
}

// ParseRemote parses a single remote token (an entry's leading token, or an
// arbitrary "git remote get-url origin" result) into a Remote. Exported for
// use by the Planner when seeding the initial FallbackRepo from the current
// working directory's origin.
func ParseRemote(token string) (Remote, error) {
	return parseRemote(token)
}

func parseRemote(token string) (Remote, error) {
	switch {
	case strings.HasPrefix(token, "file://"):
		return Remote{Kind: RemoteFileURL, Path: strings.TrimPrefix(token, "file://"), Raw: token}, nil
	case strings.HasPrefix(token, "https://github.com/"):
		owner, repo, err := splitGitHubPath(strings.TrimPrefix(token, "https://github.com/"))
		if err != nil {
			return Remote{}, err
		}
		return Remote{Kind: RemoteHTTPSGitHub, Owner: owner, Repo: repo, Raw: token}, nil
	case strings.HasPrefix(token, "https://") || strings.HasPrefix(token, "http://"):
		return Remote{Kind: RemoteOther, Raw: token}, nil
	case strings.HasPrefix(token, "git@"):
		m := sshGitHubPattern.FindStringSubmatch(token)
		if m == nil {
			return Remote{}, fmt.Errorf("malformed ssh remote: %s", token)
		}
		host, p := m[1], m[2]
		if host == "github.com" {
			owner, repo, err := splitGitHubPath(p)
			if err != nil {
				return Remote{}, err
			}
			return Remote{Kind: RemoteSSHGitHub, Owner: owner, Repo: repo, Raw: token}, nil
		}
		return Remote{Kind: RemoteOther, Raw: token}, nil
	case strings.HasPrefix(token, "/"):
		return Remote{Kind: RemoteAbsolutePath, Path: token, Raw: token}, nil
	case ownerRepoPattern.MatchString(token):
		parts := strings.SplitN(token, "/", 2)
		return Remote{Kind: RemoteOwnerRepo, Owner: parts[0], Repo: parts[1], Raw: token}, nil
	default:
		return Remote{}, fmt.Errorf("unrecognized remote form: %s", token)
	}
}

func splitGitHubPath(p string) (owner, repo string, err error) {
	p = strings.TrimSuffix(p, ".git")
	parts := strings.SplitN(p, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed github owner/repo path: %s", p)
	}
	return parts[0], parts[1], nil
}

func baseOf(p string) string {
	p = strings.TrimSuffix(p, ".git")
	return path.Base(p)
}
