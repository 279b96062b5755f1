package wizard

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
)

var ownerRepoPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)

// Run interactively builds a repos.list file, one entry at a time, and
// returns its lines (without a trailing newline per line).
func Run(printer *Printer) ([]string, error) {
	printer.PrintHeader(IconRocket, "repos.list setup wizard")
	printer.PrintInfo("Answer a few questions to build a plan file describing the repositories to materialize.")

	var lines []string

	var defaultVisibility string
	visForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default visibility for newly created repositories").
				Options(
					huh.NewOption("private", "private"),
					huh.NewOption("public", "public"),
					huh.NewOption("decide later", ""),
				).
				Value(&defaultVisibility),
		),
	).WithTheme(huh.ThemeCharm())
	if err := visForm.Run(); err != nil {
		return nil, fmt.Errorf("visibility step: %w", err)
	}
	switch defaultVisibility {
	case "public":
		lines = append(lines, "default-public")
	case "private":
		lines = append(lines, "default-private")
	}

	for {
		var ownerRepo, ref, target string
		var asWorktree bool

		entryForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("owner/repo").
					Placeholder("acme/alpha").
					Validate(validateOwnerRepo).
					Value(&ownerRepo),
				huh.NewInput().
					Title("branch (optional)").
					Placeholder("leave blank for the repository's default branch").
					Value(&ref),
				huh.NewInput().
					Title("target directory (optional)").
					Placeholder("leave blank to derive one from the repository name").
					Value(&target),
				huh.NewConfirm().
					Title("Materialize as a linked worktree of the previous entry instead of a clone?").
					Value(&asWorktree),
			),
		).WithTheme(huh.ThemeCharm())
		if err := entryForm.Run(); err != nil {
			return nil, fmt.Errorf("entry step: %w", err)
		}

		line := ownerRepo
		if ref != "" {
			line += "@" + ref
		}
		if target != "" {
			line += " " + target
		}
		if asWorktree {
			line += " --worktree"
		}
		lines = append(lines, line)
		printer.PrintSuccess("added: " + line)

		var again bool
		moreForm := huh.NewForm(
			huh.NewGroup(huh.NewConfirm().Title("Add another repository?").Value(&again)),
		).WithTheme(huh.ThemeCharm())
		if err := moreForm.Run(); err != nil {
			return nil, fmt.Errorf("continue step: %w", err)
		}
		if !again {
			break
		}
	}

	return lines, nil
}

// Write serializes lines to path, one per line, creating the file if it
// does not exist and overwriting it otherwise.
func Write(path string, lines []string) error {
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func validateOwnerRepo(s string) error {
	if !ownerRepoPattern.MatchString(s) {
		return fmt.Errorf("expected the form \"owner/repo\"")
	}
	return nil
}
