package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/topicflow/pkg/editor"
	"github.com/aretw0/topicflow/pkg/validation"
	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage stored projects",
	}
	cmd.AddCommand(newProjectCreateCmd(), newProjectListCmd(), newProjectIssuesCmd())
	return cmd
}

func newProjectCreateCmd() *cobra.Command {
	var in editor.CreateProjectInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project for an instrument type and revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ed, closeStore, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			project, err := ed.Projects.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s %s)\n", project.ID, project.Instrument.Type, project.Instrument.Revision)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Type, "type", "", "Instrument type")
	cmd.Flags().StringVar(&in.Revision, "revision", "", "Instrument revision")
	cmd.Flags().StringVar(&in.RootTopicID, "root-topic", "", "ID of the root topic (default: "+editor.DefaultRootTopicID+")")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("revision")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ed, closeStore, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			projects, err := ed.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(projects)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tREVISION\tTOPICS")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.ID, p.Instrument.Type, p.Instrument.Revision, len(p.Topics))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the projects as JSON")
	return cmd
}

func newProjectIssuesCmd() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "issues <id>",
		Short: "Validate a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ed, closeStore, err := a.editor(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			project, err := ed.Projects.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			issues := ed.Projects.Check(project)
			if err := writeReport(cmd.OutOrStdout(), project, issues, width); err != nil {
				return err
			}
			if validation.HasBlockingErrors(issues) {
				return errBlocking
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 100, "Word wrap width of the terminal report")
	return cmd
}
