package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/evalview/evalview/internal/diff"
)

// Console renders check results for humans.
type Console struct {
	out io.Writer

	title   lipgloss.Style
	success lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
}

func NewConsole(out io.Writer) *Console {
	return &Console{
		out:     out,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (c *Console) Title(text string) {
	fmt.Fprintln(c.out, c.title.Render(text))
}

// RenderCheck prints one compared test with its status line and, when the
// comparison diverged, the tool and output details underneath.
func (c *Console) RenderCheck(check CheckSummary) {
	d := check.Diff

	status := c.statusBadge(d.Status, check.GateTriggered)
	line := fmt.Sprintf("%s %s", status, check.TestName)
	if d.MatchedVariant != "" && d.MatchedVariant != "default" {
		line += c.dim.Render(" (matched " + d.MatchedVariant + ")")
	}
	fmt.Fprintln(c.out, line)

	if d.ScoreDiff != 0 {
		fmt.Fprintf(c.out, "  score %+.1f\n", d.ScoreDiff)
	}
	for _, td := range d.ToolDiffs {
		switch td.Change {
		case diff.ToolAdded:
			fmt.Fprintf(c.out, "  %s tool %q at step %d\n", c.warn.Render("+"), td.ActualTool, td.Position)
		case diff.ToolRemoved:
			fmt.Fprintf(c.out, "  %s tool %q at step %d\n", c.warn.Render("-"), td.GoldenTool, td.Position)
		case diff.ToolChanged:
			fmt.Fprintf(c.out, "  %s step %d: %q → %q\n", c.warn.Render("~"), td.Position, td.GoldenTool, td.ActualTool)
		case diff.ToolParamsChanged:
			fmt.Fprintf(c.out, "  %s step %d (%s): %d parameter change(s)\n", c.warn.Render("~"), td.Position, td.ActualTool, len(td.ParamDiffs))
		}
		for _, pd := range td.ParamDiffs {
			fmt.Fprintf(c.out, "      %s %s\n", pd.Key, c.dim.Render(string(pd.Change)))
		}
	}
	if d.Output != nil && d.Status != diff.StatusPassed {
		fmt.Fprintf(c.out, "  output similarity %.2f\n", d.Output.Similarity)
	}
	if check.DriftWarning != "" {
		fmt.Fprintf(c.out, "  %s %s\n", c.warn.Render("drift:"), check.DriftWarning)
	}
}

func (c *Console) RenderSummary(summary RunSummary) {
	fmt.Fprintln(c.out)
	line := fmt.Sprintf("%d checked", summary.Total)
	if summary.Passed > 0 {
		line += ", " + c.success.Render(fmt.Sprintf("%d passed", summary.Passed))
	}
	if summary.Changed > 0 {
		line += ", " + c.warn.Render(fmt.Sprintf("%d changed", summary.Changed))
	}
	if summary.Failed > 0 {
		line += ", " + c.fail.Render(fmt.Sprintf("%d failed", summary.Failed))
	}
	fmt.Fprintln(c.out, line)
}

func (c *Console) statusBadge(status diff.Status, gated bool) string {
	switch {
	case status == diff.StatusPassed:
		return c.success.Render("✓ passed")
	case gated:
		return c.fail.Render("✗ " + string(status))
	default:
		return c.warn.Render("~ " + string(status))
	}
}
