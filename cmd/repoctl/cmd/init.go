package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repoctl/repoctl/internal/wizard"
)

// newInitCmd wraps the interactive repos.list authoring wizard — a feature
// this rewrite adds beyond the distilled spec (SPEC_FULL.md ADDED FEATURES).
func newInitCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively build a repos.list plan file",
		Long: `init walks through an interactive form, one repository at a time, and
writes the result as a repos.list plan file ready for "repoctl setup".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			return runInit(outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "repos.list", "path to write the generated plan file to")

	return cmd
}

func runInit(outPath string) error {
	printer := wizard.NewPrinter()

	lines, err := wizard.Run(printer)
	if err != nil {
		printer.PrintError(fmt.Sprintf("wizard aborted: %v", err))
		return err
	}

	if err := wizard.Write(outPath, lines); err != nil {
		printer.PrintError(fmt.Sprintf("could not write %s: %v", outPath, err))
		return err
	}

	printer.PrintDivider()
	printer.PrintSuccess(fmt.Sprintf("wrote %s (%d lines)", outPath, len(lines)))
	return nil
}
