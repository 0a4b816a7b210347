package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cardpdf",
		Short:         "Pair card scans and generate PDFs",
		Long:          "cardpdf matches front/back identity-card scans by identifier, extracts holder names with OCR and emits one PDF per matched pair.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newMatchCommand())
	return rootCmd
}
