package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formgraph",
		Short:         "formgraph fills structured forms from free-text messages",
		Long:          `formgraph runs a staged pipeline that analyzes a form, extracts values from a message, auto-fills, validates and asks for what is still missing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML configuration file")

	root.AddCommand(
		newServeCmd(),
		newFillCmd(),
		newValidateCmd(),
		newProcessCmd(),
		newGraphCmd(),
	)
	return root
}
