package main

import (
	"fmt"
	"os"

	"github.com/aretw0/topicflow"
	"github.com/aretw0/topicflow/internal/presentation/diagram"
	"github.com/aretw0/topicflow/pkg/adapters/render"
	"github.com/aretw0/topicflow/pkg/validation"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	var topicID, output string
	var plain bool

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Export a topic as a Mermaid diagram",
		Long: `Prints the Mermaid source of one topic, with states and transitions that have
validation issues highlighted. With --output the diagram is sent to the configured
renderer and the result is written to the given file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			project, err := topicflow.LoadProject(args[0])
			if err != nil {
				return err
			}

			if topicID == "" {
				for _, t := range project.Topics {
					if t.IsRoot() {
						topicID = t.ID()
						break
					}
				}
			}
			topic, ok := project.Topic(topicID)
			if !ok {
				return fmt.Errorf("topic %q not found in %s", topicID, args[0])
			}

			var overlay *diagram.Overlay
			if !plain {
				v := validation.New(validation.WithDisabledRules(a.cfg.Validation.DisabledRules...))
				overlay = &diagram.Overlay{Issues: v.Validate(project)}
			}
			source := diagram.GenerateMermaid(topic, overlay)

			if output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), source)
				return err
			}

			client, err := render.New(a.cfg.Render.URL,
				render.WithDiagramType(a.cfg.Render.DiagramType),
				render.WithFormat(a.cfg.Render.Format),
				render.WithCacheSize(0),
				render.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			rendered, err := client.Render(cmd.Context(), source)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, []byte(rendered), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			a.logger.Info("Diagram written", "path", output, "topic", topicID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&topicID, "topic", "t", "", "Topic ID (default: the root topic)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Render through the diagram renderer and write to this file")
	cmd.Flags().BoolVar(&plain, "plain", false, "Do not highlight validation issues")
	return cmd
}
