package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/repoctl/repoctl/internal/devcontainer"
	"github.com/repoctl/repoctl/internal/forge"
	"github.com/repoctl/repoctl/internal/logging"
	"github.com/repoctl/repoctl/internal/plan"
	"github.com/repoctl/repoctl/internal/planfile"
	"github.com/repoctl/repoctl/internal/reconcile"
	"github.com/repoctl/repoctl/internal/workspace"
	"github.com/repoctl/repoctl/pkg/cliutil"
)

func newSetupCmd() *cobra.Command {
	var (
		planPath        string
		public          bool
		codespaces      bool
		devcontainers   []string
		permissionsTok  string
		toolTok         string
		noWorkspaceFile bool
		format          string
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Reconcile the workspace against its repos.list plan",
		Long: cliutil.QuickStartHelp(`  # Reconcile using ./repos.list (or ./repos-to-clone.list)
  repoctl setup

  # Default new repositories to public, and inject Codespaces permissions
  repoctl setup --public --codespaces`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			code, err := runSetup(c.Context(), setupOptions{
				PlanPath:        planPath,
				Public:          public,
				Codespaces:      codespaces,
				Devcontainers:   devcontainers,
				Permissions:     permissionsTok,
				Tool:            toolTok,
				NoWorkspaceFile: noWorkspaceFile,
				Format:          format,
				Stdout:          c.OutOrStdout(),
				Stderr:          c.ErrOrStderr(),
			})
			return withExitCode(code, err)
		},
	}

	cmd.Flags().StringVarP(&planPath, "file", "f", "", "plan file path (default: repos.list, falling back to repos-to-clone.list)")
	cmd.Flags().BoolVarP(&public, "public", "p", false, "default visibility for newly created repositories is public")
	cmd.Flags().BoolVar(&codespaces, "codespaces", false, "enable container-dev config injection")
	cmd.Flags().StringArrayVarP(&devcontainers, "devcontainer", "d", nil, "container-dev config file to inject into (repeatable; implies --codespaces)")
	cmd.Flags().StringVar(&permissionsTok, "permissions", "", "permission token passed through to the container-config injector")
	cmd.Flags().StringVarP(&toolTok, "tool", "t", "", "tool token passed through to the container-config injector")
	cmd.Flags().BoolVar(&noWorkspaceFile, "no-workspace-file", false, "skip writing the editor workspace file")
	cmd.Flags().StringVar(&format, "format", "default", "output format: "+strings.Join(cliutil.CoreFormats, ", "))

	return cmd
}

type setupOptions struct {
	PlanPath        string
	Public          bool
	Codespaces      bool
	Devcontainers   []string
	Permissions     string
	Tool            string
	NoWorkspaceFile bool
	Format          string
	Stdout, Stderr  io.Writer
}

// runSetup implements the full "setup" pipeline: parse, plan, reconcile,
// then the optional emitters (spec §1 control flow). It returns the process
// exit code alongside an error. Per the Reconciler's failure policy (spec
// §4.5: "a failed action does not abort the run"), a non-empty error tally
// does not stop the emitters; it is reported once at the end as exit code 1
// with a summary error.
func runSetup(ctx context.Context, opts setupOptions) (int, error) {
	format := opts.Format
	if format == "" {
		format = "default"
	}
	if err := cliutil.ValidateFormat(format, cliutil.CoreFormats); err != nil {
		return 1, err
	}

	path, err := resolvePlanFile(opts.PlanPath)
	if err != nil {
		return 1, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 1, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	entries, flags, perrs := planfile.Parse(f)
	if len(perrs) > 0 {
		for _, e := range perrs {
			fmt.Fprintln(opts.Stderr, "plan error:", e)
		}
		return 1, fmt.Errorf("%d plan error(s) in %s", len(perrs), path)
	}

	workingDir, parentDir, err := workspaceDirs()
	if err != nil {
		return 1, err
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
		for _, e := range rerrs {
			fmt.Fprintln(opts.Stderr, "plan error:", e)
		}
		return 1, fmt.Errorf("%d plan error(s) in %s", len(rerrs), path)
	}
	for _, d := range resolved.Diagnostics {
		fmt.Fprintln(opts.Stderr, "plan notice:", d)
	}

	logger, err := buildLogger()
	if err != nil {
		return 1, err
	}

	forgeClient, token, err := buildForgeClient(ctx, logger)
	if err != nil {
		return 1, err
	}

	invocationDefault := forge.VisibilityPrivate
	if opts.Public {
		invocationDefault = forge.VisibilityPublic
	}

	reconciler := reconcile.New(driver, forgeClient, logger, reconcile.Options{
		DefaultVisibility: invocationDefault,
		Token:             token,
	})

	tally, results := reconciler.Run(ctx, resolved)
	if cliutil.IsMachineFormat(format) {
		if err := writeReconcileReportJSON(opts.Stdout, results, tally, debug); err != nil {
			fmt.Fprintln(opts.Stderr, "warning: could not encode JSON report:", err)
		}
	} else {
		printReconcileResults(opts.Stdout, results)
		fmt.Fprintf(opts.Stdout, "repoctl: %d created, %d already existed, %d errors, %d skipped\n",
			tally.Created, tally.AlreadyExisted, tally.Errors, tally.Skipped)
	}

	if !opts.NoWorkspaceFile {
		if err := emitWorkspaceFile(workingDir, resolved); err != nil {
			fmt.Fprintln(opts.Stderr, "warning: could not write editor workspace file:", err)
		}
	}

	if opts.Codespaces || len(opts.Devcontainers) > 0 {
		files := opts.Devcontainers
		if len(files) == 0 {
			files = []string{filepath.Join(".devcontainer", "devcontainer.json")}
		}
		ownerRepos := reconciledOwnerRepos(resolved, results)
		for _, file := range files {
			if err := devcontainer.Inject(file, ownerRepos, devcontainer.Permissions{
				Permissions: opts.Permissions,
				Tool:        opts.Tool,
			}); err != nil {
				fmt.Fprintln(opts.Stderr, "warning: devcontainer injection into", file, "failed:", err)
			}
		}
	}

	if tally.Failed() {
		return 1, fmt.Errorf("%d of %d actions failed", tally.Errors, len(results))
	}
	return 0, nil
}

// buildForgeClient resolves credentials and validates them once, ahead of
// any repo-creation attempt (spec §4.1). Per spec §7, an invalid token
// aborts the run outright — it would fail identically for every action — so
// it is returned as an error rather than silently degrading; a network
// failure, by contrast, degrades the Client to read-only-local mode for the
// remainder of the run.
func buildForgeClient(ctx context.Context, logger logging.Logger) (*forge.Client, string, error) {
	token, mode, err := forge.ResolveToken(ctx)
	if err != nil || token == "" {
		return forge.NewClient("", forge.AuthModeNone), "", nil
	}

	client := forge.NewClient(token, mode)
	if verr := client.ValidateToken(ctx); verr != nil {
		var fe *forge.Error
		if errors.As(verr, &fe) && fe.Kind == forge.KindInvalidToken {
			return nil, "", fmt.Errorf("forge token invalid: %w", verr)
		}
		logger.Warn("forge token validation network error, continuing in read-only-local mode: %v", verr)
		return forge.NewClient("", forge.AuthModeNone), "", nil
	}

	return client, token, nil
}

// jsonActionResult is the machine-readable rendering of one ActionResult
// (--format json and llm share it, since only encoding/json is wired; csv is
// not among the CoreFormats that --format accepts).
type jsonActionResult struct {
	Target  string `json:"target"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type jsonReconcileReport struct {
	Results        []jsonActionResult `json:"results"`
	Created        int                `json:"created"`
	AlreadyExisted int                `json:"alreadyExisted"`
	Errors         int                `json:"errors"`
	Skipped        int                `json:"skipped"`
}

// writeReconcileReportJSON renders results for --format json (and, absent a
// dedicated encoder, --format llm) via cliutil.WriteJSON.
func writeReconcileReportJSON(w io.Writer, results []reconcile.ActionResult, tally reconcile.Tally, verbose bool) error {
	report := jsonReconcileReport{
		Results:        make([]jsonActionResult, 0, len(results)),
		Created:        tally.Created,
		AlreadyExisted: tally.AlreadyExisted,
		Errors:         tally.Errors,
		Skipped:        tally.Skipped,
	}
	for _, r := range results {
		jr := jsonActionResult{Target: r.Action.Target, Outcome: string(r.Outcome), Message: r.Message}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		report.Results = append(report.Results, jr)
	}
	return cliutil.WriteJSON(w, report, verbose)
}

func printReconcileResults(w io.Writer, results []reconcile.ActionResult) {
	for _, r := range results {
		switch r.Outcome {
		case reconcile.OutcomeCreated:
			fmt.Fprintf(w, "%s %s — %s\n", color.GreenString("+"), r.Action.Target, r.Message)
		case reconcile.OutcomeAlreadyExisted:
			fmt.Fprintf(w, "%s %s — %s\n", color.CyanString("="), r.Action.Target, r.Message)
		case reconcile.OutcomeError:
			fmt.Fprintf(w, "%s %s — %v\n", color.RedString("x"), r.Action.Target, r.Err)
		case reconcile.OutcomeSkipped:
			fmt.Fprintf(w, "%s %s — %s\n", color.YellowString("."), r.Action.Target, r.Message)
		}
	}
}

func emitWorkspaceFile(workingDir string, p plan.Plan) error {
	var names []string
	for _, a := range p.Actions {
		if a.Kind == plan.ActionSkip {
			continue
		}
		names = append(names, filepath.Base(a.Target))
	}
	doc := workspace.Build(names)
	return workspace.Write(filepath.Join(workingDir, workspace.DefaultFileName), doc)
}

// reconciledOwnerRepos collects "owner/repo" for every forge-hosted action
// that did not end in error, deduplicated, in plan order.
func reconciledOwnerRepos(p plan.Plan, results []reconcile.ActionResult) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range results {
		if r.Outcome == reconcile.OutcomeError {
			continue
		}
		remote := r.Action.Remote
		if !remote.IsForgeHosted() {
			remote = r.Action.BaseRemote
		}
		if !remote.IsForgeHosted() {
			continue
		}
		key := remote.Canonical()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
