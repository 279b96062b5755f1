package gitexec

import (
	"fmt"
	"regexp"
	"strings"
)

// Dangerous patterns that could enable command injection or path traversal.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[;&|><$]`),
	regexp.MustCompile(`\$\(`),
	regexp.MustCompile("`"),
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`^/(?:etc|usr|bin|sbin)/`),
	regexp.MustCompile(`\x00`),
	regexp.MustCompile(`\r|\n`),
}

// safeGitFlags whitelists the flags the Driver is allowed to pass through.
var safeGitFlags = map[string]bool{
	"--help": true, "--version": true, "--quiet": true, "--verbose": true,
	"--git-dir": true, "--work-tree": true, "--bare": true,
	"--branch": true, "--depth": true, "--single-branch": true, "--no-single-branch": true,
	"--no-checkout": true, "--origin": true,
	"--porcelain": true, "--short": true,
	"--all": true, "--force": true, "--prune": true, "--detach": true,
	"--track": true, "--no-track": true, "--guess-remote": true,
	"--lock": true, "--unlock": true,
	"--add": true, "--heads": true, "--abbrev-ref": true,
}

// SanitizeArgs validates and trims git command arguments to prevent command
// injection. Flags with values (e.g. --branch=main) are validated by name.
func SanitizeArgs(args []string) ([]string, error) {
	if len(args) == 0 {
		return args, nil
	}

	sanitized := make([]string, 0, len(args))
	for i, arg := range args {
		for _, pattern := range dangerousPatterns {
			if pattern.MatchString(arg) {
				return nil, fmt.Errorf("argument %d contains dangerous pattern: %s", i, arg)
			}
		}

		if strings.HasPrefix(arg, "-") {
			if err := validateFlag(arg); err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
		}

		sanitized = append(sanitized, strings.TrimSpace(arg))
	}

	return sanitized, nil
}

func validateFlag(flag string) error {
	if flag == "--" {
		return nil
	}

	flagName := flag
	if idx := strings.Index(flag, "="); idx != -1 {
		flagName = flag[:idx]
	}

	if !safeGitFlags[flagName] {
		if len(flagName) == 2 && flagName[0] == '-' && flagName[1] != '-' {
			return nil
		}
		return fmt.Errorf("unknown or unsafe git flag: %s", flagName)
	}

	return nil
}

// SanitizeBranchDirSegment replaces every '/' in a branch name with '-' to
// produce a filesystem-safe path segment. It is the identity when x contains
// no '/'. The Git branch name itself is never altered — only the directory
// segment derived from it.
func SanitizeBranchDirSegment(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}

var invalidBranchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\.`),
	regexp.MustCompile(`\.\.`),
	regexp.MustCompile(`[~^:?*\[\]\\]`),
	regexp.MustCompile(`\s`),
	regexp.MustCompile(`^/|/$|//`),
	regexp.MustCompile(`\.lock$`),
}

// ValidateBranchName checks that a branch name follows Git's own naming
// rules before it is ever passed to a subprocess.
func ValidateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	for _, pattern := range invalidBranchPatterns {
		if pattern.MatchString(name) {
			return fmt.Errorf("branch name contains invalid pattern: %s", name)
		}
	}
	if len(name) > 255 {
		return fmt.Errorf("branch name too long (max 255 characters)")
	}
	return nil
}
