package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/topicflow"
	"github.com/aretw0/topicflow/internal/presentation/tui"
	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/validation"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// validateReport is the --format json output.
type validateReport struct {
	Project  string         `json:"project"`
	Blocking bool           `json:"blocking"`
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
	Issues   []domain.Issue `json:"issues"`
}

func newValidateCmd() *cobra.Command {
	var format string
	var width int

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a project file",
		Long: `Reads a YAML or JSON project document and reports every validation issue.
Exits with status 1 when the project has blocking errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			project, err := topicflow.LoadProject(args[0])
			if err != nil {
				return err
			}

			v := validation.New(validation.WithDisabledRules(a.cfg.Validation.DisabledRules...))
			issues := validation.SortBySeverity(v.Validate(project))
			a.logger.Debug("Project validated", "file", args[0], "issues", len(issues))

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				errs, warns := validation.Count(issues)
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(validateReport{
					Project:  project.ID,
					Blocking: validation.HasBlockingErrors(issues),
					Errors:   errs,
					Warnings: warns,
					Issues:   issues,
				}); err != nil {
					return err
				}
			case "text", "":
				if err := writeReport(out, project, issues, width); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (text|json)", format)
			}

			if validation.HasBlockingErrors(issues) {
				return errBlocking
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text|json)")
	cmd.Flags().IntVar(&width, "width", 100, "Word wrap width of the terminal report")
	return cmd
}

// writeReport renders markdown through glamour on a terminal and falls back to
// the termenv plain report otherwise.
func writeReport(w io.Writer, project domain.Project, issues []domain.Issue, width int) error {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		render, err := tui.NewRenderer(width)
		if err == nil {
			rendered, err := render(tui.ReportMarkdown(project, issues))
			if err == nil {
				_, err = io.WriteString(w, rendered)
				return err
			}
		}
	}
	return tui.WriteReport(w, project, issues)
}
