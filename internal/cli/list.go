// internal/cli/list.go
package dinomuseum

import "github.com/spf13/cobra"

// listCmd represents the 'list' command group.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group commands for listing resources",
	Long:  `The 'list' command groups subcommands that list resources. It performs no action on its own.`,
}

func init() {
	rootCmd.AddCommand(listCmd)
}
