// internal/cli/serve.go
package dinomuseum

import (
	"os/signal"
	"syscall"

	"github.com/mwiater/dinomuseum/internal/server"
	"github.com/spf13/cobra"
)

// newServer builds the HTTP server from configuration; tests replace it.
var newServer = server.FromConfig

// serveCmd implements 'serve', which runs the museum web page.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the museum web page",
	Long:  `The 'serve' command starts the HTTP server with the gallery, the model report, specimen generation and the dinosaur chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		srv, err := newServer(cfg)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, cfg.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
