// internal/cli/chat.go
package dinomuseum

import (
	"os/signal"
	"syscall"

	"github.com/mwiater/dinomuseum/cli"
	"github.com/mwiater/dinomuseum/internal/logging"
	"github.com/spf13/cobra"
)

// startGUI is a function alias to cli.StartGUI so tests can replace the terminal UI.
var startGUI = cli.StartGUI

// chatCmd represents the 'chat' command, which starts the terminal chat.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to a specimen from the terminal",
	Long:  `The 'chat' command loads the gallery, lets you pick a specimen and chat with it through the configured chat backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		// The terminal UI owns stdout; keep log lines in the file only.
		if err := logging.InitFile(cfg.LogFilePath()); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return startGUI(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

