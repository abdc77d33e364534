package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hwabench/hwabench/internal/bench"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hwabench version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hwabench %s\n", bench.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
