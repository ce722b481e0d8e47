package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"factkb/internal/pipeline"
	"factkb/internal/report"
)

func reportCMD() *cobra.Command {
	var inputPath string
	var outputPath string

	var reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Render a markdown quality report for a produced knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			artifact, err := pipeline.LoadArtifact(inputPath)
			if err != nil {
				return err
			}
			if err := report.Write(artifact, outputPath); err != nil {
				return err
			}
			fmt.Printf("report for run %s written to %s\n", artifact.Metadata.RunID, outputPath)
			return nil
		},
	}
	reportCmd.Flags().StringVarP(&inputPath, "input", "i", "kb.json", "artifact to report on")
	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "report.md", "markdown output path")

	return reportCmd
}
