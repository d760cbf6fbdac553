package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/validation"
	"github.com/muesli/termenv"
)

// ReportMarkdown renders a validation report as markdown, issues in severity order.
func ReportMarkdown(project domain.Project, issues []domain.Issue) string {
	var sb strings.Builder
	errs, warns := validation.Count(issues)

	fmt.Fprintf(&sb, "# %s %s\n\n", orDash(project.Instrument.Type), orDash(project.Instrument.Revision))
	fmt.Fprintf(&sb, "%d topic(s) · **%d error(s)** · %d warning(s)\n\n", len(project.Topics), errs, warns)

	if len(issues) == 0 {
		sb.WriteString("✅ No issues found.\n")
		return sb.String()
	}
	if validation.HasBlockingErrors(issues) {
		sb.WriteString("> ⛔ Saving is blocked until the errors are fixed.\n\n")
	}

	sb.WriteString("| Level | Topic | Message | Rule |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, issue := range validation.SortBySeverity(issues) {
		fmt.Fprintf(&sb, "| %s | %s | %s | `%s` |\n",
			levelIcon(issue.Level), orDash(issue.TopicID), escapeCell(issue.Message), issue.Rule)
	}
	return sb.String()
}

// WriteReport prints a plain report, coloured through termenv when w is a colour terminal.
func WriteReport(w io.Writer, project domain.Project, issues []domain.Issue) error {
	out := termenv.NewOutput(w)
	errs, warns := validation.Count(issues)

	header := fmt.Sprintf("%s %s: %d error(s), %d warning(s)",
		orDash(project.Instrument.Type), orDash(project.Instrument.Revision), errs, warns)
	if _, err := fmt.Fprintln(w, out.String(header).Bold()); err != nil {
		return err
	}

	for _, issue := range validation.SortBySeverity(issues) {
		tag := out.String("warning").Foreground(out.Color("3"))
		if issue.IsError() {
			tag = out.String("error").Foreground(out.Color("1"))
		}
		location := issue.TopicID
		if location == "" {
			location = "project"
		}
		if _, err := fmt.Fprintf(w, "  %s [%s] %s (%s)\n", tag, location, issue.Message, issue.Rule); err != nil {
			return err
		}
	}
	return nil
}

func levelIcon(l domain.Level) string {
	if l == domain.LevelError {
		return "⛔ error"
	}
	return "⚠️ warning"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
