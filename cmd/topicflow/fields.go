package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/editor"
	"github.com/spf13/cobra"
)

func newFieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Manage the controlled vocabularies",
		Long:  "Vocabularies: " + vocabularyNames(),
	}
	cmd.AddCommand(newFieldsListCmd(), newFieldsAddCmd(), newFieldsRemoveCmd(), newFieldsColorCmd())
	return cmd
}

func vocabularyNames() string {
	names := make([]string, len(domain.Vocabularies))
	for i, v := range domain.Vocabularies {
		names[i] = string(v)
	}
	return strings.Join(names, "|")
}

func printFields(w io.Writer, cfg domain.FieldConfig) {
	for _, v := range domain.Vocabularies {
		fmt.Fprintf(w, "%s:\n", v)
		for _, value := range cfg.Values(v) {
			if color, ok := cfg.FlowTypeColor(value); ok && v == domain.VocabFlowTypes {
				fmt.Fprintf(w, "  - %s (%s)\n", value, color)
				continue
			}
			fmt.Fprintf(w, "  - %s\n", value)
		}
	}
}

// runFields opens the store, applies fn and prints the resulting configuration.
func runFields(fn func(cmd *cobra.Command, args []string, fields *editor.Fields) (domain.FieldConfig, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		ed, closeStore, err := a.editor(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		cfg, err := fn(cmd, args, ed.Fields)
		if err != nil {
			return err
		}
		printFields(cmd.OutOrStdout(), cfg)
		return nil
	}
}

func newFieldsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every vocabulary",
		Args:  cobra.NoArgs,
		RunE: runFields(func(cmd *cobra.Command, _ []string, fields *editor.Fields) (domain.FieldConfig, error) {
			return fields.Get(cmd.Context())
		}),
	}
}

func newFieldsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <vocabulary> <value>",
		Short: "Add a value to a vocabulary",
		Args:  cobra.ExactArgs(2),
		RunE: runFields(func(cmd *cobra.Command, args []string, fields *editor.Fields) (domain.FieldConfig, error) {
			return fields.AddValue(cmd.Context(), domain.Vocabulary(args[0]), args[1])
		}),
	}
}

func newFieldsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <vocabulary> <value>",
		Short: "Remove a value from a vocabulary",
		Args:  cobra.ExactArgs(2),
		RunE: runFields(func(cmd *cobra.Command, args []string, fields *editor.Fields) (domain.FieldConfig, error) {
			return fields.RemoveValue(cmd.Context(), domain.Vocabulary(args[0]), args[1])
		}),
	}
}

func newFieldsColorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color <flowType> [#RRGGBB]",
		Short: "Set or clear the colour of a flow type",
		Args:  cobra.RangeArgs(1, 2),
		RunE: runFields(func(cmd *cobra.Command, args []string, fields *editor.Fields) (domain.FieldConfig, error) {
			color := ""
			if len(args) == 2 {
				color = args[1]
			}
			return fields.SetFlowTypeColor(cmd.Context(), args[0], color)
		}),
	}
}
