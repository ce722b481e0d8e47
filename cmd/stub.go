package main

import (
	"log"

	"github.com/spf13/cobra"

	"factkb/config"
	"factkb/internal/stub"
)

func stubCMD() *cobra.Command {
	var cfgPath string
	var addr string

	var stubCmd = &cobra.Command{
		Use:   "stub",
		Short: "Run an in-memory storage service for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Stub.Addr
			}
			logger := log.New(log.Writer(), cfg.General.LogPrefix+"[STUB] ", log.LstdFlags)
			logger.Printf("listening on %s", addr)
			return stub.NewServer(logger).Run(addr)
		},
	}
	stubCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	stubCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return stubCmd
}
