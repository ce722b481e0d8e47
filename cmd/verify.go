package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"factkb/config"
	"factkb/internal/deploy"
	"factkb/internal/verify"
)

func verifyCMD() *cobra.Command {
	var cfgPath string
	var questionsPath string
	var serviceURL string
	var outDir string

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Run verification questions against the deployed knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if serviceURL == "" {
				serviceURL = cfg.Service.BaseURL
			}

			questions, err := verify.LoadQuestions(questionsPath)
			if err != nil {
				return err
			}

			logger := log.New(log.Writer(), cfg.General.LogPrefix+"[VERIFY] ", log.LstdFlags)
			client := deploy.NewClient(deploy.Config{
				BaseURL: serviceURL,
				Timeout: cfg.Service.Timeout,
			}, nil, logger)

			harness := verify.NewHarness(client, logger)
			run, err := harness.Execute(cmd.Context(), questions)
			if err != nil {
				return err
			}

			path, err := run.Save(outDir)
			if err != nil {
				return err
			}
			fmt.Printf("verify run %s: %d/%d questions passed\n", run.RunID, run.Passed, run.Total)
			fmt.Printf("results written to %s\n", path)
			if failed := run.FailedQuestions(); len(failed) > 0 {
				fmt.Printf("%d failed questions can be fed back with optimize --failed\n", len(failed))
			}
			return nil
		},
	}
	verifyCmd.Flags().StringVarP(&questionsPath, "questions", "q", "questions.json", "verification question set")
	verifyCmd.Flags().StringVar(&serviceURL, "service", "", "service base URL (default from config)")
	verifyCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the run record")
	verifyCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return verifyCmd
}
