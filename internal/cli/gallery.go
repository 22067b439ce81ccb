// internal/cli/gallery.go
package dinomuseum

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mwiater/dinomuseum/internal/gallery"
	"github.com/mwiater/dinomuseum/internal/server"
	"github.com/mwiater/dinomuseum/internal/util"
	"github.com/spf13/cobra"
)

var galleryJSON bool

// galleryCmd represents the 'gallery' command group.
var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Group commands for the specimen gallery",
	Long:  `The 'gallery' command groups subcommands that inspect the specimen catalogue. It performs no action on its own.`,
}

type exhibitSummary struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Summary  string `json:"summary"`
	Physical string `json:"physical"`
}

// galleryListCmd implements 'gallery list', which prints the specimens on display.
var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the specimens on display",
	Long:  `The 'list' subcommand loads the catalogue the same way the web page does and prints every specimen in catalogue order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		exhibits, err := server.LoadExhibits(commandContext(cmd), GetConfig())
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), gallery.ErrorMessage)
			return err
		}

		summaries := make([]exhibitSummary, 0, len(exhibits))
		for _, ex := range exhibits {
			summaries = append(summaries, exhibitSummary{
				Name:     ex.Name,
				ImageURL: ex.ImageURL,
				Summary:  util.StripTags(string(ex.MainPlaque)),
				Physical: util.StripTags(string(ex.PhysicalPlaque)),
			})
		}

		if galleryJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		}

		if len(summaries) == 0 {
			fmt.Fprintln(out, "La galería está vacía.")
			return nil
		}
		heading := color.New(color.FgHiGreen, color.Bold)
		for _, s := range summaries {
			fmt.Fprintln(out, heading.Sprint(s.Name))
			fmt.Fprintf(out, "  %s\n", s.ImageURL)
			fmt.Fprintf(out, "  %s\n\n", util.TruncateRunes(strings.Join(strings.Fields(s.Summary), " "), 100))
		}
		return nil
	},
}

func init() {
	galleryListCmd.Flags().BoolVar(&galleryJSON, "json", false, "print the specimens as JSON")
	galleryCmd.AddCommand(galleryListCmd)
	rootCmd.AddCommand(galleryCmd)
}
