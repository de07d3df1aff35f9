package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zer0phucks/pubhub-connect/internal/utilities"
)

var versionCmd = cobra.Command{
	Use: "version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(utilities.Version)
	},
}
