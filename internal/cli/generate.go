// internal/cli/generate.go
package dinomuseum

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/mwiater/dinomuseum/internal/appconfig"
	"github.com/mwiater/dinomuseum/internal/gallery"
	"github.com/mwiater/dinomuseum/internal/museumapi"
	"github.com/mwiater/dinomuseum/internal/util"
	"github.com/spf13/cobra"
)

// generator is the backend call behind 'generate'; tests replace it.
var generator = func(cfg *appconfig.Config) interface {
	Generate(ctx context.Context) (*museumapi.Generated, error)
} {
	return museumapi.New(cfg.APIBaseURL, cfg.RequestTimeout())
}

// generateCmd implements 'generate', which asks the backend for a new specimen.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new specimen",
	Long:  `The 'generate' command asks the museum backend to invent a new dinosaur, write its record and paint its portrait. The specimen joins the catalogue immediately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		generated, err := generator(GetConfig()).Generate(commandContext(cmd))
		if err != nil {
			detail := err.Error()
			var apiErr *museumapi.APIError
			if errors.As(err, &apiErr) {
				detail = apiErr.Detail
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "No se pudo generar el nuevo espécimen. Error: %s\n", detail)
			return err
		}

		fmt.Fprintln(out, color.New(color.FgHiGreen, color.Bold).Sprint(generated.Name))
		if generated.ImageURL != "" {
			fmt.Fprintf(out, "  %s\n", generated.ImageURL)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, util.StripTags(string(gallery.FormatTextToHTML(generated.Description))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
