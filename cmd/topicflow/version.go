package main

import (
	"fmt"

	"github.com/aretw0/topicflow"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of topicflow",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "topicflow version %s\n", topicflow.Version)
		},
	}
}
