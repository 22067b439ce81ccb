package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwiater/dinomuseum/internal/logging"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/errgroup"
)

// Files that make up a report bundle.
const (
	ArchitectureFile  = "architecture.txt"
	HistoryFile       = "history_saved.json"
	SamplesFile       = "generated_samples.json"
	LossCurveFile     = "loss_curve.png"
	AccuracyCurveFile = "acc_curve.png"
)

// maxDocumentBytes bounds how much of a single report document is read.
const maxDocumentBytes = 8 << 20

// ErrReportUnavailable is returned when any document of the bundle fails.
var ErrReportUnavailable = errors.New("report unavailable")

// Source opens a named document of a report bundle.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource reads report documents from a local directory.
type DirSource struct {
	Dir string
}

// Open implements Source.
func (s DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.Dir, name))
}

// HTTPSource fetches report documents from BaseURL/<name>.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// Open implements Source. Any non-2xx response is an error.
func (s HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	endpoint := strings.TrimRight(s.BaseURL, "/") + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s returned %s", endpoint, resp.Status)
	}
	return resp.Body, nil
}

// Loader fetches and parses a report bundle.
type Loader struct {
	source     Source
	publicPath string
}

// NewLoader returns a Loader reading from src. publicPath is the URL prefix the
// curve images are served under.
func NewLoader(src Source, publicPath string) *Loader {
	return &Loader{source: src, publicPath: publicPath}
}

// Load fetches the three documents concurrently and waits for all of them.
// The first failure cancels the others and the whole report is reported as
// ErrReportUnavailable; no partial report is ever returned.
func (l *Loader) Load(ctx context.Context) (*Report, error) {
	var (
		architecture string
		history      MetricsHistory
		samples      *SampleSet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := l.read(gctx, ArchitectureFile)
		if err != nil {
			return err
		}
		architecture = string(data)
		return nil
	})
	g.Go(func() error {
		data, err := l.read(gctx, HistoryFile)
		if err != nil {
			return err
		}
		history, err = DecodeHistory(data)
		return err
	})
	g.Go(func() error {
		data, err := l.read(gctx, SamplesFile)
		if err != nil {
			return err
		}
		samples, err = DecodeSamples(data)
		return err
	})

	if err := g.Wait(); err != nil {
		logging.LogEvent("report: load failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrReportUnavailable, err)
	}
	return Build(architecture, history, samples, l.publicPath), nil
}

func (l *Loader) read(ctx context.Context, name string) ([]byte, error) {
	rc, err := l.source.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("read %s: document exceeds %d bytes", name, maxDocumentBytes)
	}
	return data, nil
}

// DecodeHistory validates and decodes history_saved.json. Only the known
// metric series are kept; other keys are ignored and a null series counts as
// missing.
func DecodeHistory(data []byte) (MetricsHistory, error) {
	if err := validateDocument(historySchema, HistoryFile, data); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", HistoryFile, err)
	}
	history := make(MetricsHistory, len(finalMetricOrder))
	for _, entry := range finalMetricOrder {
		series, ok := raw[entry.metric]
		if !ok || string(bytes.TrimSpace(series)) == "null" {
			continue
		}
		var values []float64
		if err := json.Unmarshal(series, &values); err != nil {
			return nil, fmt.Errorf("decode %s %q: %w", HistoryFile, entry.metric, err)
		}
		history[entry.metric] = values
	}
	return history, nil
}

// DecodeSamples validates and decodes generated_samples.json, keeping the key
// order of the JSON object. Entries whose key is not a sampling key are
// skipped whatever their value.
func DecodeSamples(data []byte) (*SampleSet, error) {
	if err := validateDocument(samplesSchema, SamplesFile, data); err != nil {
		return nil, err
	}
	raw := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(bytes.TrimSpace(data), raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", SamplesFile, err)
	}
	samples := NewSampleSet()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		if !samplingKeyRe.MatchString(pair.Key) {
			continue
		}
		var names []string
		if err := json.Unmarshal(pair.Value, &names); err != nil {
			return nil, fmt.Errorf("decode %s %q: %w", SamplesFile, pair.Key, err)
		}
		samples.Set(pair.Key, names)
	}
	return samples, nil
}
