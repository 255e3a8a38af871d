package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mulch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mulch version %s\n", strings.TrimSpace(mulch.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
