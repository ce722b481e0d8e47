package main

import (
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"factkb/config"
	"factkb/internal/pipeline"
	"factkb/internal/scoring"
	"factkb/internal/selector"
	"factkb/internal/verify"
)

func optimizeCMD() *cobra.Command {
	var cfgPath string
	var inputPath string
	var outputPath string
	var failedPath string
	var target int

	var optimize = &cobra.Command{
		Use:   "optimize",
		Short: "Deduplicate, score and select the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if target == 0 {
				target = cfg.Selection.TargetCount
			}

			candidates, err := pipeline.LoadCandidates(inputPath)
			if err != nil {
				return err
			}

			var failedQuestions []string
			if failedPath != "" {
				failedQuestions, err = verify.LoadFailedQuestions(failedPath)
				if err != nil {
					return err
				}
			}

			logger := log.New(log.Writer(), cfg.General.LogPrefix, log.LstdFlags)
			metrics := pipeline.NewMetrics(prometheus.NewRegistry())
			p := pipeline.New(pipeline.Config{
				TargetCount: target,
				Scoring: scoring.Config{
					FailedQuestions:     failedQuestions,
					HighValueCategories: cfg.Pipeline.HighValueCategories,
					CriticalKeywords:    cfg.Pipeline.CriticalKeywords,
				},
				Selection: selector.Config{
					CategoryTargets:       cfg.Selection.CategoryTargets,
					DefaultCategoryTarget: cfg.Selection.DefaultCategoryTarget,
				},
			}, metrics, logger)

			artifact, stats, err := p.Run(candidates)
			if err != nil {
				return err
			}
			if err := artifact.Save(outputPath); err != nil {
				return err
			}

			fmt.Printf("optimize complete: %d selected of %d ingested (%d skipped, %d merged, avg quality %.2f)\n",
				stats.Selected, stats.Ingested, stats.Skipped, stats.Merged, stats.AverageQuality)
			fmt.Printf("artifact written to %s (run %s)\n", outputPath, artifact.Metadata.RunID)
			return nil
		},
	}
	optimize.Flags().StringVarP(&inputPath, "input", "i", "candidates.json", "candidate entries file")
	optimize.Flags().StringVarP(&outputPath, "output", "o", "kb.json", "output artifact path")
	optimize.Flags().StringVar(&failedPath, "failed", "", "verify run record with failed questions to boost")
	optimize.Flags().IntVar(&target, "target", 0, "target entry count (0 = config default)")
	optimize.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return optimize
}
