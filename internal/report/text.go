package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
)

var (
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	cardTitle   = lipgloss.NewStyle().Faint(true)
	cardValue   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = cellStyle.Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	heading     = color.New(color.FgHiGreen, color.Bold)
)

// RenderText writes a terminal rendition of the report.
func RenderText(w io.Writer, r *Report) error {
	var b strings.Builder

	if r.VocabOK {
		b.WriteString(section("Longitud máxima de la secuencia (T)"))
		b.WriteString(cards([]FinalMetric{{Label: "T", Value: r.Vocab}}) + "\n")
	}

	if len(r.Layers) > 0 {
		b.WriteString(section("Resumen de Capas"))
		rows := make([][]string, 0, len(r.Layers))
		for _, row := range r.Layers {
			rows = append(rows, []string{row.Type, row.OutputShape, row.Params})
		}
		b.WriteString(table([]string{"Capa (Tipo)", "Tamaño de Salida", "Parámetros #"}, rows) + "\n")
	}

	if len(r.Totals) > 0 {
		b.WriteString(section("Parámetros del Modelo"))
		totals := make([]FinalMetric, 0, len(r.Totals))
		for _, t := range r.Totals {
			totals = append(totals, FinalMetric{Label: t.Label, Value: t.Value})
		}
		b.WriteString(cards(totals) + "\n")
	}

	b.WriteString(section("Métricas de Evaluación Finales"))
	b.WriteString(cards(r.FinalMetrics) + "\n")

	b.WriteString(section("Curvas de Aprendizaje"))
	fmt.Fprintf(&b, "  %s\n  %s\n", r.LossCurveURL, r.AccuracyCurveURL)

	b.WriteString(section("Análisis Comparativo y Muestras"))
	rows := make([][]string, 0, len(r.Samples))
	for _, s := range r.Samples {
		rows = append(rows, []string{s.Temperature, s.TopK, s.TopP, strings.Join(s.Names, ", ")})
	}
	b.WriteString(table([]string{"Temperatura", "Top-K", "Top-P", "Nombres Generados"}, rows) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func section(title string) string {
	return "\n" + heading.Sprint(title) + "\n"
}

func cards(items []FinalMetric) string {
	rendered := make([]string, 0, len(items))
	for _, item := range items {
		rendered = append(rendered, cardStyle.Render(cardTitle.Render(item.Label)+"\n"+cardValue.Render(item.Value)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func table(headers []string, rows [][]string) string {
	return ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}
