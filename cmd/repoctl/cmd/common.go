package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/repoctl/repoctl/internal/gitexec"
	"github.com/repoctl/repoctl/internal/logging"
)

// resolvePlanFile implements the "-f <path>" fallback rule shared by setup
// and run (spec §6): an explicit path always wins; otherwise "repos.list"
// is tried first, falling back to "repos-to-clone.list".
func resolvePlanFile(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if _, err := os.Stat("repos.list"); err == nil {
		return "repos.list", nil
	}
	if _, err := os.Stat("repos-to-clone.list"); err == nil {
		return "repos-to-clone.list", nil
	}
	return "", fmt.Errorf("no plan file found (looked for repos.list, repos-to-clone.list)")
}

// workspaceDirs returns the absolute working directory and its OS-level
// parent, which every resolved target is relative to (spec §3 "Workspace
// context").
func workspaceDirs() (workingDir, parentDir string, err error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("determine working directory: %w", err)
	}
	wd, err = filepath.Abs(wd)
	if err != nil {
		return "", "", err
	}
	return wd, filepath.Dir(wd), nil
}

func buildLogger() (logging.Logger, error) {
	useDebug := debug || debugFile != ""
	return logging.New(useDebug, debugFile)
}

func buildDriver() *gitexec.Driver {
	return gitexec.NewDriver(gitexec.NewExecutor())
}
