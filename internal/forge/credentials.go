package forge

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ResolveToken sources a GitHub token following spec §4.1's precedence: the
// GH_TOKEN environment variable first, then GITHUB_TOKEN as a recognized
// alias, then a best-effort git credential-helper lookup. Returns ("",
// AuthModeNone, nil) if no credentials are available anywhere, which the caller treats as
// a signal to run in read-only-local mode rather than a hard error.
func ResolveToken(ctx context.Context) (token string, mode AuthMode, err error) {
	if v := os.Getenv("GH_TOKEN"); v != "" {
		return v, AuthModeEnvToken, nil
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		return v, AuthModeEnvToken, nil
	}

	tok, err := credentialHelperToken(ctx)
	if err != nil {
		return "", AuthModeNone, nil
	}
	if tok == "" {
		return "", AuthModeNone, nil
	}
	return tok, AuthModeCredentialStore, nil
}

// credentialHelperToken invokes "git credential fill" against
// https://github.com and extracts the password field, which git's GitHub
// credential helpers store the token as. Output lines use CRLF on some
// platforms/helpers; both line endings are normalized away before parsing.
func credentialHelperToken(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "credential", "fill")
	cmd.Stdin = strings.NewReader("protocol=https\nhost=github.com\n\n")

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git credential fill: %w", err)
	}

	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if v, ok := strings.CutPrefix(line, "password="); ok {
			return v, nil
		}
	}
	return "", nil
}
