package report

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleArchitecture = `Model: "dino_generator"
_________________________________________________________________
 Layer (type)                Output Shape              Param #
=================================================================
 embed (Embedding)           (None, 40, 64)            1,920

 gru (GRU)                   (None, 40, 256)           247,296

 gru_1 (GRU)                 (None, 40, 256)           394,752

 dense (Dense)               (None, 40, 30)            7,710

=================================================================
Total params: 651,678 (2.49 MB)
Trainable params: 651,678 (2.49 MB)
Non-trainable params: 0 (0.00 B)
Optimizer params: 1,303,358 (4.97 MB)
`

func TestParseVocabInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "thousands separator", text: "embed (Embedding)   (None, 27,000)", want: "27,000", wantOK: true},
		{name: "first integer after the layer name", text: sampleArchitecture, want: "40", wantOK: true},
		{name: "plain integer", text: "embed (Embedding) 512", want: "512", wantOK: true},
		{name: "absent", text: "dense (Dense) (None, 30) 7,710", wantOK: false},
		{name: "empty", text: "", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseVocabInfo(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("ParseVocabInfo() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseLayerSummary(t *testing.T) {
	t.Parallel()

	got := ParseLayerSummary(sampleArchitecture)
	want := []LayerRow{
		{Type: "embed (Embedding", OutputShape: "(None, 40, 64)", Params: "1,920"},
		{Type: "gru (GRU", OutputShape: "(None, 40, 256)", Params: "247,296"},
		{Type: "gru_1 (GRU", OutputShape: "(None, 40, 256)", Params: "394,752"},
		{Type: "dense (Dense", OutputShape: "(None, 40, 30)", Params: "7,710"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseLayerSummary() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLayerSummarySingleLine(t *testing.T) {
	t.Parallel()

	text := "Layer (type)  Output Shape  Param #\ngru (GRU)  (None, 64)  12,480\nTotal params: 12,480"
	got := ParseLayerSummary(text)
	want := []LayerRow{{Type: "gru (GRU", OutputShape: "(None, 64)", Params: "12,480"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseLayerSummary() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLayerSummaryDropsMalformedLines(t *testing.T) {
	t.Parallel()

	text := "Layer (type)  Output Shape  Param #\n" +
		"==========\n" +
		"input_layer (InputLayer)  (None, 40)  0\n" +
		"no shape here 12\n" +
		"Total params: 0"
	got := ParseLayerSummary(text)
	want := []LayerRow{{Type: "input_layer (InputLayer", OutputShape: "(None, 40)", Params: "0"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseLayerSummary() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseParamTotals(t *testing.T) {
	t.Parallel()

	got := ParseParamTotals(sampleArchitecture)
	want := []ParamTotal{
		{Label: "Total params", Value: "651,678 (2.49 MB)"},
		{Label: "Trainable params", Value: "651,678 (2.49 MB)"},
		{Label: "Non-trainable params", Value: "0 (0.00 B)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseParamTotals() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseParamTotalsOptimizerTerminator(t *testing.T) {
	t.Parallel()

	text := "Total params: 10\nTrainable params: 10\nOptimizer params: 20 (80.00 B)\nNon-trainable params: 0"
	got := ParseParamTotals(text)
	want := []ParamTotal{
		{Label: "Total params", Value: "10"},
		{Label: "Trainable params", Value: "10"},
		{Label: "Optimizer params", Value: "20 (80.00 B)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseParamTotals() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseParamTotalsSplitsOnFirstColon(t *testing.T) {
	t.Parallel()

	text := "Total params: 10: approx\nNon-trainable params: 0"
	got := ParseParamTotals(text)
	if len(got) != 2 || got[0].Value != "10: approx" {
		t.Fatalf("unexpected totals: %+v", got)
	}
}

func TestParsersOnUnrelatedText(t *testing.T) {
	t.Parallel()

	text := "nothing to see here\njust a log line"
	if v, ok := ParseVocabInfo(text); ok || v != "" {
		t.Fatalf("expected no vocab, got %q", v)
	}
	if rows := ParseLayerSummary(text); len(rows) != 0 {
		t.Fatalf("expected no layers, got %+v", rows)
	}
	if totals := ParseParamTotals(text); len(totals) != 0 {
		t.Fatalf("expected no totals, got %+v", totals)
	}
}

func TestComputeFinalMetrics(t *testing.T) {
	t.Parallel()

	history := MetricsHistory{
		"loss":     {1.5, 0.9123456},
		"val_loss": {0.9123456, 0.81},
		"accuracy": {},
	}
	got := ComputeFinalMetrics(history)
	want := []FinalMetric{
		{Label: "Pérdida (Validación)", Value: "0.8100"},
		{Label: "Precisión (Validación)", Value: NotAvailable},
		{Label: "Pérdida (Entrenamiento)", Value: "0.9123"},
		{Label: "Precisión (Entrenamiento)", Value: NotAvailable},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ComputeFinalMetrics() mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeFinalMetricsEmpty(t *testing.T) {
	t.Parallel()

	for _, history := range []MetricsHistory{nil, {}} {
		got := ComputeFinalMetrics(history)
		if len(got) != 4 {
			t.Fatalf("expected 4 metrics, got %d", len(got))
		}
		for _, m := range got {
			if m.Value != NotAvailable {
				t.Fatalf("expected %q for %s, got %q", NotAvailable, m.Label, m.Value)
			}
		}
	}
}

func TestParseSamplingKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key    string
		want   SamplingKey
		wantOK bool
	}{
		{key: "t0.7_k5_p1.0", want: SamplingKey{Temperature: "0.7", TopK: "5", TopP: "1.0"}, wantOK: true},
		{key: "t1.2_k0_p0.9", want: SamplingKey{Temperature: "1.2", TopK: "0", TopP: "0.9"}, wantOK: true},
		{key: "samples_t0.5_k10_p0.95", want: SamplingKey{Temperature: "0.5", TopK: "10", TopP: "0.95"}, wantOK: true},
		{key: "t0.7_k5", wantOK: false},
		{key: "k5_p1.0", wantOK: false},
		{key: "t0.7_kx_p1.0", wantOK: false},
		{key: "", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseSamplingKey(tt.key)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("ParseSamplingKey(%q) = (%+v, %v), want (%+v, %v)", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBuildSamplesTableKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	samples := NewSampleSet()
	if err := json.Unmarshal([]byte(`{
		"t1.0_k0_p0.9": ["Byarripovurebogasudeus"],
		"broken_key": ["Nadasaurus"],
		"t0.7_k5_p1.0": ["Ligantosaurus", "Miraptor"],
		"t0.5_k3": ["Sinpsaurus"]
	}`), samples); err != nil {
		t.Fatalf("unmarshal samples: %v", err)
	}

	got := BuildSamplesTable(samples)
	want := []SampleRow{
		{SamplingKey: SamplingKey{Temperature: "1.0", TopK: "0", TopP: "0.9"}, Names: []string{"Byarripovurebogasudeus"}},
		{SamplingKey: SamplingKey{Temperature: "0.7", TopK: "5", TopP: "1.0"}, Names: []string{"Ligantosaurus", "Miraptor"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("BuildSamplesTable() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSamplesTableNil(t *testing.T) {
	t.Parallel()

	if rows := BuildSamplesTable(nil); rows != nil {
		t.Fatalf("expected nil rows, got %+v", rows)
	}
	if rows := BuildSamplesTable(NewSampleSet()); len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	r := Build("", nil, nil, "/static/report/")
	if r.VocabOK || len(r.Layers) != 0 || len(r.Totals) != 0 || len(r.Samples) != 0 {
		t.Fatalf("expected empty sections, got %+v", r)
	}
	if len(r.FinalMetrics) != 4 {
		t.Fatalf("expected 4 final metrics, got %d", len(r.FinalMetrics))
	}
	if r.LossCurveURL != "/static/report/loss_curve.png" || r.AccuracyCurveURL != "/static/report/acc_curve.png" {
		t.Fatalf("unexpected curve urls: %q %q", r.LossCurveURL, r.AccuracyCurveURL)
	}
}

func TestParseParamTotalsSkipsBlankLines(t *testing.T) {
	t.Parallel()

	text := "Total params: 12,480\n\nTrainable params: 12,480\n   \nNon-trainable params: 0"
	got := ParseParamTotals(text)
	want := []ParamTotal{
		{Label: "Total params", Value: "12,480"},
		{Label: "Trainable params", Value: "12,480"},
		{Label: "Non-trainable params", Value: "0"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseParamTotals mismatch (-want +got):\n%s", diff)
	}
}
