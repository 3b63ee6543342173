package cmd

import (
	"MashFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the MashFM server",
	Long:  `Start the MashFM HTTP server: upload/analysis API, timeline editing and mixdown rendering.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
