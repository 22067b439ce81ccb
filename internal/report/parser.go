package report

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	vocabRe       = regexp.MustCompile(`embed \(Embedding\).*?(\d{1,3}(?:,\d{3})*)`)
	layerBlockRe  = regexp.MustCompile(`Layer \(type\)\s*Output Shape\s*Param #\n([\s\S]*?)Total params:`)
	layerLineRe   = regexp.MustCompile(`(\w+\s*\(.*?)\)\s+(\(.*\))\s+([\d,]+)`)
	totalsBlockRe = regexp.MustCompile(`(Total params:[\s\S]*?(?:Optimizer params: .*|Non-trainable params:.*))`)
	samplingKeyRe = regexp.MustCompile(`t([\d.]+)_k(\d+)_p([\d.]+)`)
)

// NotAvailable is the value shown for a metric that was never recorded.
const NotAvailable = "N/A"

// finalMetricOrder fixes the label and source metric of each final-metric card.
var finalMetricOrder = []struct {
	label  string
	metric string
}{
	{"Pérdida (Validación)", "val_loss"},
	{"Precisión (Validación)", "val_accuracy"},
	{"Pérdida (Entrenamiento)", "loss"},
	{"Precisión (Entrenamiento)", "accuracy"},
}

// ParseVocabInfo returns the first comma-grouped integer after the embedding
// layer line, separators preserved. ok is false when there is no such line.
func ParseVocabInfo(text string) (string, bool) {
	m := vocabRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseLayerSummary extracts the rows between the "Layer (type)" header and
// "Total params:". Lines that do not carry all three fields are dropped.
//
// The type column is captured up to its first closing parenthesis, so
// "gru (GRU)" yields "gru (GRU".
func ParseLayerSummary(text string) []LayerRow {
	block := layerBlockRe.FindStringSubmatch(text)
	if block == nil {
		return nil
	}
	var rows []LayerRow
	for _, line := range strings.Split(strings.TrimSpace(block[1]), "\n") {
		parts := layerLineRe.FindStringSubmatch(line)
		if parts == nil {
			continue
		}
		rows = append(rows, LayerRow{Type: parts[1], OutputShape: parts[2], Params: parts[3]})
	}
	return rows
}

// ParseParamTotals captures "Total params:" through the first
// "Optimizer params:" or "Non-trainable params:" line and splits each line on
// its first colon.
func ParseParamTotals(text string) []ParamTotal {
	block := totalsBlockRe.FindStringSubmatch(text)
	if block == nil {
		return nil
	}
	var totals []ParamTotal
	for _, line := range strings.Split(strings.TrimSpace(block[1]), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		label, value, _ := strings.Cut(line, ":")
		totals = append(totals, ParamTotal{Label: strings.TrimSpace(label), Value: strings.TrimSpace(value)})
	}
	return totals
}

// ComputeFinalMetrics always returns the four final-epoch cards in the same
// order, formatting the last recorded value to four decimals.
func ComputeFinalMetrics(history MetricsHistory) []FinalMetric {
	metrics := make([]FinalMetric, 0, len(finalMetricOrder))
	for _, entry := range finalMetricOrder {
		metrics = append(metrics, FinalMetric{Label: entry.label, Value: lastValue(history[entry.metric])})
	}
	return metrics
}

func lastValue(values []float64) string {
	if len(values) == 0 {
		return NotAvailable
	}
	return strconv.FormatFloat(values[len(values)-1], 'f', 4, 64)
}

// ParseSamplingKey recovers temperature, top-k and top-p from a key such as
// "t0.7_k5_p1.0".
func ParseSamplingKey(key string) (SamplingKey, bool) {
	m := samplingKeyRe.FindStringSubmatch(key)
	if m == nil {
		return SamplingKey{}, false
	}
	return SamplingKey{Temperature: m[1], TopK: m[2], TopP: m[3]}, true
}

// BuildSamplesTable walks samples in insertion order and keeps the entries
// whose key parses.
func BuildSamplesTable(samples *SampleSet) []SampleRow {
	if samples == nil {
		return nil
	}
	rows := make([]SampleRow, 0, samples.Len())
	for pair := samples.Oldest(); pair != nil; pair = pair.Next() {
		key, ok := ParseSamplingKey(pair.Key)
		if !ok {
			continue
		}
		rows = append(rows, SampleRow{SamplingKey: key, Names: pair.Value})
	}
	return rows
}

// Build assembles a Report from the three decoded documents. publicPath is
// the URL prefix under which the curve images are served.
func Build(architecture string, history MetricsHistory, samples *SampleSet, publicPath string) *Report {
	vocab, ok := ParseVocabInfo(architecture)
	base := strings.TrimRight(publicPath, "/")
	return &Report{
		Vocab:            vocab,
		VocabOK:          ok,
		Layers:           ParseLayerSummary(architecture),
		Totals:           ParseParamTotals(architecture),
		FinalMetrics:     ComputeFinalMetrics(history),
		Samples:          BuildSamplesTable(samples),
		LossCurveURL:     base + "/" + LossCurveFile,
		AccuracyCurveURL: base + "/" + AccuracyCurveFile,
	}
}
