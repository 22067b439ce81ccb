package report

import (
	"html/template"
	"io"
)

// trainingNames is the size of the name corpus the model was trained on.
const trainingNames = 1536

// ErrorMessage is the single message shown in place of a report that failed to load.
const ErrorMessage = "Error: No se pudo cargar el informe del modelo. Verifique que la carpeta 'report' esté en 'static' y que los archivos existan."

type htmlView struct {
	*Report
	TrainingNames int
}

// RenderHTML writes the report fragment in display order.
func RenderHTML(w io.Writer, r *Report) error {
	return reportTemplate.ExecuteTemplate(w, "report", htmlView{Report: r, TrainingNames: trainingNames})
}

// RenderError writes the static error fragment.
func RenderError(w io.Writer) error {
	return reportTemplate.ExecuteTemplate(w, "report-error", ErrorMessage)
}

var reportTemplate = template.Must(template.New("report").Parse(reportTemplateHTML))

const reportTemplateHTML = `{{ define "report-error" }}<p class="error-msg" style="color: red;">{{ . }}</p>{{ end }}
{{ define "metric-card" }}<div class="metric-card"><div class="metric-card-title">{{ .Label }}</div><div class="metric-card-value">{{ .Value }}</div></div>{{ end }}
{{ define "report" }}<h3>Arquitectura y Preprocesamiento</h3>
<p class="analysis-note">
  El modelo es una <strong>Red Neuronal Recurrente (RNN) de tipo decoder-only</strong>, diseñada para predecir el siguiente carácter de forma autorregresiva.
  Las celdas <strong>GRU (Gated Recurrent Unit)</strong> gestionan la memoria a largo plazo mediante sus compuertas de reinicio y actualización,
  y las dos capas GRU apiladas capturan jerarquías de patrones más abstractas.
</p>
<h4>Flujo de Preprocesamiento de Datos</h4>
<div class="preprocess-flow">
  <div class="flow-step">Normalizar Texto</div>
  <div class="flow-arrow">→</div>
  <div class="flow-step">Añadir Tokens (SOS/EOS)</div>
  <div class="flow-arrow">→</div>
  <div class="flow-step">Definir la longitud máxima (T)</div>
  <div class="flow-arrow">→</div>
  <div class="flow-step">Aplicar Padding</div>
  <div class="flow-arrow">→</div>
  <div class="flow-step">Crear Secuencias (X, Y)</div>
</div>
<div class="metrics-summary metrics-summary-single">
  <div class="metric-card"><div class="metric-card-title">Nombres para Entrenamiento</div><div class="metric-card-value">{{ .TrainingNames }}</div></div>
</div>
{{ if .VocabOK }}<div class="metrics-summary">
  <div class="metric-card"><div class="metric-card-title">Longitud máxima de la secuencia representada por T</div><div class="metric-card-value">{{ .Vocab }}</div></div>
</div>
{{ end }}{{ if .Layers }}<h3>Resumen de Capas</h3>
<table class="report-table">
  <thead><tr><th>Capa (Tipo)</th><th>Tamaño de Salida</th><th>Parámetros #</th></tr></thead>
  <tbody>{{ range .Layers }}
    <tr><td>{{ .Type }}</td><td>{{ .OutputShape }}</td><td>{{ .Params }}</td></tr>{{ end }}
  </tbody>
</table>
{{ end }}{{ if .Totals }}<h3>Parámetros del Modelo</h3>
<div class="metrics-summary">{{ range .Totals }}
  <div class="metric-card"><div class="metric-card-title">{{ .Label }}</div><div class="metric-card-value">{{ .Value }}</div></div>{{ end }}
</div>
{{ end }}<h3>Métricas de Evaluación Finales</h3>
<div class="metrics-summary">{{ range .FinalMetrics }}
  {{ template "metric-card" . }}{{ end }}
</div>
<h3>Curvas de Aprendizaje</h3>
<div class="curves-container">
  <img src="{{ .LossCurveURL }}" alt="Curva de Pérdida">
  <img src="{{ .AccuracyCurveURL }}" alt="Curva de Precisión">
</div>
<h3>Análisis Comparativo y Muestras</h3>
<table class="report-table">
  <thead><tr><th>Temperatura</th><th>Top-K</th><th>Top-P</th><th>Nombres Generados</th></tr></thead>
  <tbody>{{ range .Samples }}
    <tr><td>{{ .Temperature }}</td><td>{{ .TopK }}</td><td>{{ .TopP }}</td><td><ul>{{ range .Names }}<li>{{ . }}</li>{{ end }}</ul></td></tr>{{ end }}
  </tbody>
</table>
{{ end }}`
