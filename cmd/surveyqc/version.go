// cmd/surveyqc/version.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the surveyqc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("surveyqc %s (%s)\n", version, commit)
	},
}
