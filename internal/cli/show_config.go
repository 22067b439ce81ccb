// internal/cli/show_config.go
package dinomuseum

import (
	"github.com/k0kubun/pp"
	"github.com/mwiater/dinomuseum/internal/appconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overriden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		cfg := GetConfig()
		appconfig.ShowConfig(out, viper.ConfigFileUsed(), cfg)
		if DebugEnabled() && cfg != nil {
			_, _ = pp.Fprintln(out, *cfg)
		}
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
