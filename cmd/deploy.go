package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"factkb/config"
	"factkb/internal/deploy"
	"factkb/internal/pipeline"
)

func deployCMD() *cobra.Command {
	var cfgPath string
	var inputPath string
	var serviceURL string
	var clearExisting bool
	var dryRun bool

	var deployCmd = &cobra.Command{
		Use:   "deploy",
		Short: "Upload a produced knowledge base to the storage service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if serviceURL == "" {
				serviceURL = cfg.Service.BaseURL
			}

			artifact, err := pipeline.LoadArtifact(inputPath)
			if err != nil {
				return err
			}
			if len(artifact.KnowledgeBase) == 0 {
				return fmt.Errorf("artifact %s contains no entries", inputPath)
			}
			if dryRun {
				fmt.Printf("dry run: would upload %d entries (run %s) to %s\n",
					len(artifact.KnowledgeBase), artifact.Metadata.RunID, serviceURL)
				return nil
			}

			client := deploy.NewClient(deploy.Config{
				BaseURL:    serviceURL,
				Timeout:    cfg.Service.Timeout,
				ChunkSize:  cfg.Service.ChunkSize,
				ChunkDelay: cfg.Service.ChunkDelay,
			}, deploy.NewMetrics(prometheus.NewRegistry()), nil)

			ctx := cmd.Context()
			result := client.Deploy(ctx, artifact.KnowledgeBase, clearExisting)
			fmt.Printf("deploy finished: %d/%d entries uploaded in %d chunks (%d failed)\n",
				result.Uploaded, result.Attempted, result.Chunks, result.FailedChunks)

			if count, err := client.Health(ctx); err != nil {
				fmt.Printf("health readback failed: %v\n", err)
			} else {
				fmt.Printf("service now reports %d entries\n", count)
			}
			return nil
		},
	}
	deployCmd.Flags().StringVarP(&inputPath, "input", "i", "kb.json", "artifact to deploy")
	deployCmd.Flags().StringVar(&serviceURL, "service", "", "service base URL (default from config)")
	deployCmd.Flags().BoolVar(&clearExisting, "clear", false, "clear existing service data before upload")
	deployCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without uploading")
	deployCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return deployCmd
}
