// Package wizard implements the interactive repos.list authoring flow
// offered by `repoctl init` — a feature this rewrite adds beyond the
// distilled spec (see SPEC_FULL.md ADDED FEATURES).
package wizard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Icons used in wizard output.
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconRocket  = "🚀"
	IconInfo    = "ℹ"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Printer handles wizard output.
type Printer struct {
	Out io.Writer
}

// NewPrinter creates a Printer writing to stdout.
func NewPrinter() *Printer {
	return &Printer{Out: os.Stdout}
}

func (p *Printer) PrintHeader(icon, title string) {
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, TitleStyle.Render(icon+" "+title))
	fmt.Fprintln(p.Out)
}

func (p *Printer) PrintSubtitle(title string) {
	fmt.Fprintln(p.Out, SubtitleStyle.Render(title))
}

func (p *Printer) PrintSuccess(msg string) {
	fmt.Fprintln(p.Out, SuccessStyle.Render(IconSuccess+" "+msg))
}

func (p *Printer) PrintError(msg string) {
	fmt.Fprintln(p.Out, ErrorStyle.Render(IconError+" "+msg))
}

func (p *Printer) PrintWarning(msg string) {
	fmt.Fprintln(p.Out, WarningStyle.Render(IconWarning+" "+msg))
}

func (p *Printer) PrintInfo(msg string) {
	fmt.Fprintln(p.Out, DimStyle.Render(IconInfo+" "+msg))
}

func (p *Printer) PrintDivider() {
	fmt.Fprintln(p.Out, DimStyle.Render(strings.Repeat("─", 50)))
}
