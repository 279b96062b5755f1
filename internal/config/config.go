// Package config resolves the small set of environment-derived settings the
// engine needs: the forge token, the optional forge username, and the
// temp-directory search order (spec §6 "Environment variables").
package config

import "os"

// Env holds the resolved environment-derived configuration.
type Env struct {
	Token   string // GH_TOKEN, falling back to GITHUB_TOKEN
	User    string // GH_USER, optional
	TempDir string // first of TMPDIR, TEMP, TMP that is set, else os.TempDir()
}

// LoadEnv reads the process environment per spec §6's precedence: GH_TOKEN
// is primary, GITHUB_TOKEN is a recognized alias consulted only if GH_TOKEN
// is unset.
func LoadEnv() Env {
	token := os.Getenv("GH_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	return Env{
		Token:   token,
		User:    os.Getenv("GH_USER"),
		TempDir: resolveTempDir(),
	}
}

func resolveTempDir() string {
	for _, name := range []string{"TMPDIR", "TEMP", "TMP"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return os.TempDir()
}
