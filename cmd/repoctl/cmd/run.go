package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/repoctl/repoctl/internal/logging"
	"github.com/repoctl/repoctl/internal/pipeline"
	"github.com/repoctl/repoctl/internal/plan"
	"github.com/repoctl/repoctl/internal/planfile"
	"github.com/repoctl/repoctl/pkg/cliutil"
)

func newRunCmd() *cobra.Command {
	var (
		planPath        string
		script          string
		include         string
		exclude         string
		ensureSetup     bool
		skipDeps        bool
		dryRun          bool
		verbose         bool
		continueOnError bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a script in every resolved directory",
		Long: cliutil.QuickStartHelp(`  # Run ./run.sh in every directory resolved from repos.list
  repoctl run

  # Reconcile first, then run deploy.sh, continuing past failures
  repoctl run --ensure-setup --script deploy.sh --continue-on-error`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			code, err := runRun(c.Context(), runOptions{
				PlanPath:        planPath,
				Script:          script,
				Include:         splitCSV(include),
				Exclude:         splitCSV(exclude),
				EnsureSetup:     ensureSetup,
				SkipDeps:        skipDeps,
				DryRun:          dryRun,
				Verbose:         verbose,
				ContinueOnError: continueOnError,
				Stdout:          c.OutOrStdout(),
				Stderr:          c.ErrOrStderr(),
			})
			return withExitCode(code, err)
		},
	}

	cmd.Flags().StringVarP(&planPath, "file", "f", "", "plan file path (default: repos.list, falling back to repos-to-clone.list)")
	cmd.Flags().StringVar(&script, "script", "run.sh", "script name to run in each resolved directory")
	cmd.Flags().StringVarP(&include, "include", "i", "", "comma-separated list of directory base names to include")
	cmd.Flags().StringVarP(&exclude, "exclude", "e", "", "comma-separated list of directory base names to exclude")
	cmd.Flags().BoolVar(&ensureSetup, "ensure-setup", false, "reconcile the workspace before running the pipeline")
	cmd.Flags().BoolVar(&skipDeps, "skip-deps", false, "reserved: skip dependency installation steps a script performs on its own")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report what would run without executing anything")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging for this run")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "process every entry even after a failure")

	return cmd
}

type runOptions struct {
	PlanPath        string
	Script          string
	Include         []string
	Exclude         []string
	EnsureSetup     bool
	SkipDeps        bool
	DryRun          bool
	Verbose         bool
	ContinueOnError bool
	Stdout, Stderr  io.Writer
}

// runRun implements the "run" pipeline (spec §4.6 / §6). It accepts either
// plan-file input, resolved the same way as "setup", or a concise plan file
// of bare directory names (spec §4.6 input (b)); the two are told apart by
// attempting the full planfile grammar first and falling back to the
// concise parser only if it yields nothing usable.
func runRun(ctx context.Context, opts runOptions) (int, error) {
	path, err := resolvePlanFile(opts.PlanPath)
	if err != nil {
		return 1, err
	}

	if opts.Verbose {
		debug = true
	}
	logger, err := buildLogger()
	if err != nil {
		return 1, err
	}

	entries, err := loadPipelineEntries(ctx, path, logger)
	if err != nil {
		return 1, err
	}

	if opts.EnsureSetup {
		if code, serr := runSetup(ctx, setupOptions{
			PlanPath: opts.PlanPath,
			Stdout:   opts.Stdout,
			Stderr:   opts.Stderr,
		}); serr != nil && code != 0 {
			return code, fmt.Errorf("ensure-setup: %w", serr)
		}
	}

	if opts.SkipDeps {
		logger.Debug("skip-deps requested; repoctl does not install dependencies itself")
	}

	runner := pipeline.New(logger, opts.Stdout, opts.Stderr)
	results, rerr := runner.Run(ctx, entries, pipeline.Options{
		DefaultScript:   opts.Script,
		Include:         opts.Include,
		Exclude:         opts.Exclude,
		ContinueOnError: opts.ContinueOnError,
		DryRun:          opts.DryRun,
	})

	pipeline.PrintSummary(opts.Stdout, results)

	if rerr == nil {
		return 0, nil
	}

	// The first failed entry's exit code is repoctl's own exit code (spec
	// §6), unless --continue-on-error was requested, in which case any
	// failure at all still yields a non-zero exit but no single code is
	// privileged over another.
	if !opts.ContinueOnError {
		for _, r := range results {
			if r.Outcome == pipeline.OutcomeFailed {
				code := r.ExitCode
				if code <= 0 {
					code = 1
				}
				return code, rerr
			}
		}
	}
	return 1, rerr
}

// loadPipelineEntries resolves the plan file at path into pipeline entries.
// It first tries the full planfile grammar (spec §4.3/§4.4); if that
// reports any parse error or produces no entries at all, it falls back to
// the concise one-directory-per-line format (spec §4.6 input (b)).
func loadPipelineEntries(ctx context.Context, path string, logger logging.Logger) ([]pipeline.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	entries, flags, perrs := planfile.Parse(newReader(raw))
	if len(perrs) == 0 && len(entries) > 0 {
		workingDir, parentDir, werr := workspaceDirs()
		if werr != nil {
			return nil, werr
		}
		driver := buildDriver()
		initFallback := plan.DiscoverInitialFallback(ctx, driver, workingDir)
		resolved, rerrs := plan.Resolve(ctx, entries, flags, plan.Context{
			ParentDir:       parentDir,
			InitialFallback: initFallback,
			WorkingDirName:  filepath.Base(workingDir),
			Driver:          driver,
		})
		if len(rerrs) > 0 {
			return nil, fmt.Errorf("%d plan error(s) in %s", len(rerrs), path)
		}
		for _, d := range resolved.Diagnostics {
			logger.Debug("%s", d)
		}
		dirs := make([]string, 0, len(resolved.Actions))
		for _, a := range resolved.Actions {
			if a.Kind == plan.ActionSkip {
				continue
			}
			dirs = append(dirs, a.Target)
		}
		logger.Debug("%s parsed as a full plan file (%d targets)", path, len(dirs))
		return pipeline.EntriesFromDirs(dirs), nil
	}

	logger.Debug("%s parsed as a concise pipeline file", path)
	return pipeline.ParseConcisePlan(newReader(raw)), nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newReader(b []byte) *strings.Reader {
	return strings.NewReader(string(b))
}
