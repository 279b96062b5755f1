// Package cmd implements the repoctl CLI commands: "setup", "run", and the
// supplemental "init" wizard.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/repoctl/repoctl/pkg/cliutil"
)

var (
	debug     bool
	debugFile string
)

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "repoctl",
		Short:         "Declarative Git workspace reconciliation",
		Version:       version,
		SilenceErrors: true,
		Long: `repoctl reconciles a local workspace against a declarative repos.list
plan file: it ensures each listed remote and branch exists on GitHub, then
materializes a matching local clone or worktree, and can run a named
script against every resolved directory.` + "\n\n" + cliutil.QuickStartHelp(`  # Reconcile the workspace described by ./repos.list
  repoctl setup

  # Run run.sh in every resolved directory
  repoctl run`),
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug-level logging")
	root.PersistentFlags().StringVar(&debugFile, "debug-file", "", "also write debug logs to this file (implies --debug)")
	root.PersistentFlags().Lookup("debug-file").NoOptDefVal = "repoctl-debug.log"

	root.AddCommand(newSetupCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newInitCmd())

	return root
}

// Execute runs the repoctl CLI and returns the process exit code.
func Execute(version string) int {
	root := newRootCmd(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "repoctl:", err)
		if code, ok := err.(exitCoder); ok {
			return code.ExitCode()
		}
		return 1
	}
	return 0
}

// exitCoder lets a subcommand's error carry a specific process exit code
// (spec §6: "Pipeline Runner's exit code is the first failed entry's exit
// code"), distinct from cobra's generic "any error means exit 1".
type exitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}
