package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "factkb"}

	root.AddCommand(optimizeCMD(), deployCMD(), verifyCMD(), reportCMD(), stubCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
