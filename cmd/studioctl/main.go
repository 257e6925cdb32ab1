package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "studioctl",
		Short:         "Command-line companion for the diagram studio",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		buildClassifyCmd(),
		buildRenderCmd(),
		buildProjectsCmd(),
	)
	return root
}
