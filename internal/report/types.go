// Package report turns a model-training report bundle (architecture summary text,
// metrics history and generated samples) into structures ready for display.
//
// Field extraction is permissive: a pattern that does not match yields an empty
// value or an omitted section. Loading is strict: if any of the three documents
// cannot be fetched or decoded, the whole report fails.
package report

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// LayerRow is one row of the layer-by-layer architecture summary.
type LayerRow struct {
	Type        string `json:"type" yaml:"type"`
	OutputShape string `json:"output_shape" yaml:"output_shape"`
	Params      string `json:"params" yaml:"params"`
}

// ParamTotal is a labelled parameter count such as "Total params: 12,480".
type ParamTotal struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// MetricsHistory maps a metric name to its per-epoch values.
type MetricsHistory map[string][]float64

// FinalMetric is one of the fixed final-epoch metric cards.
type FinalMetric struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// SampleSet maps a sampling-configuration key to the names generated with it,
// in the order the keys were received.
type SampleSet = orderedmap.OrderedMap[string, []string]

// NewSampleSet returns an empty SampleSet.
func NewSampleSet() *SampleSet {
	return orderedmap.New[string, []string]()
}

// SamplingKey holds the three numeric substrings of a "t<float>_k<int>_p<float>" key.
type SamplingKey struct {
	Temperature string `json:"temperature" yaml:"temperature"`
	TopK        string `json:"top_k" yaml:"top_k"`
	TopP        string `json:"top_p" yaml:"top_p"`
}

// SampleRow is one row of the sampling-configuration table.
type SampleRow struct {
	SamplingKey `yaml:",inline"`
	Names []string `json:"names" yaml:"names"`
}

// Report is everything the report view renders, derived once per request.
type Report struct {
	Vocab            string        `json:"vocab,omitempty" yaml:"vocab,omitempty"`
	VocabOK          bool          `json:"vocab_ok" yaml:"vocab_ok"`
	Layers           []LayerRow    `json:"layers" yaml:"layers"`
	Totals           []ParamTotal  `json:"totals" yaml:"totals"`
	FinalMetrics     []FinalMetric `json:"final_metrics" yaml:"final_metrics"`
	Samples          []SampleRow   `json:"samples" yaml:"samples"`
	LossCurveURL     string        `json:"loss_curve_url" yaml:"loss_curve_url"`
	AccuracyCurveURL string        `json:"accuracy_curve_url" yaml:"accuracy_curve_url"`
}
