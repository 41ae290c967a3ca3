package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func main() {
	var (
		verbose int
		logFile string
	)

	rootCmd := &cobra.Command{
		Use:           "mappificator",
		Short:         "Merge community mappings into parchment exports",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbose, path)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newHierarchyCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newValidateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
