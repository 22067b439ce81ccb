// internal/cli/report.go
package dinomuseum

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mwiater/dinomuseum/internal/report"
	"github.com/mwiater/dinomuseum/internal/server"
	"github.com/mwiater/dinomuseum/internal/util"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var (
	reportFormat  string
	reportHTMLOut string
)

// reportCmd implements 'report', which prints the model-training report.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the name generator's training report",
	Long:  `The 'report' command loads the report bundle (architecture, history and samples) and prints it as text, JSON or YAML. With --html it also writes the fragment the web page shows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		rep, err := server.ReportLoader(GetConfig()).Load(commandContext(cmd))
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), report.ErrorMessage)
			return err
		}

		if reportHTMLOut != "" {
			var b strings.Builder
			if err := report.RenderHTML(&b, rep); err != nil {
				return err
			}
			if err := util.WriteFile(reportHTMLOut, []byte(b.String())); err != nil {
				return fmt.Errorf("write %s: %w", reportHTMLOut, err)
			}
		}

		return writeReport(out, rep, reportFormat)
	},
}

func writeReport(out io.Writer, rep *report.Report, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return report.RenderText(out, rep)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "text", "output format: text, json or yaml")
	reportCmd.Flags().StringVar(&reportHTMLOut, "html", "", "also write the HTML fragment to this file")
	rootCmd.AddCommand(reportCmd)
}
