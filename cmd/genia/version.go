package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genia-lsp/genia/internal/buildinfo"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := buildinfo.Current()
		if versionJSON {
			printJSON(info)
			return
		}
		fmt.Printf("genia %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output in JSON format")
}
