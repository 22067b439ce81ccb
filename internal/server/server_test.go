package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/dinomuseum/internal/chat"
	"github.com/mwiater/dinomuseum/internal/gallery"
	"github.com/mwiater/dinomuseum/internal/logging"
	"github.com/mwiater/dinomuseum/internal/museumapi"
	"github.com/mwiater/dinomuseum/internal/report"
)

const testArchitecture = `Model: "generator"
Layer (type)                Output Shape              Param #
embed (Embedding)           (None, 40, 64)            2,432
gru (GRU)                   (None, 40, 256)           247,296
Total params: 249,728 (975.50 KB)
Trainable params: 249,728 (975.50 KB)
Non-trainable params: 0 (0.00 B)
`

type stubGenerator struct {
	onGenerate func()
	err        error
}

func (g stubGenerator) Generate(context.Context) (*museumapi.Generated, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.onGenerate != nil {
		g.onGenerate()
	}
	return &museumapi.Generated{Name: "Nuevosaurus"}, nil
}

type stubBackend struct {
	answer string
	err    error
}

func (b stubBackend) Ask(context.Context, string, string) (string, error) {
	return b.answer, b.err
}

type fixture struct {
	dir          string
	descriptions string
	server       *Server
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newFixture(t *testing.T, gen Generator, backend chat.Backend) *fixture {
	t.Helper()
	dir := t.TempDir()
	reportDir := filepath.Join(dir, "report")
	writeFile(t, filepath.Join(reportDir, report.ArchitectureFile), testArchitecture)
	writeFile(t, filepath.Join(reportDir, report.HistoryFile), `{"loss":[0.9],"accuracy":[0.7],"val_loss":[0.8],"val_accuracy":[0.75]}`)
	writeFile(t, filepath.Join(reportDir, report.SamplesFile), `{"t0.7_k5_p1.0":["Ligantosaurus"]}`)

	descriptions := filepath.Join(dir, "dino_descriptions.json")
	writeFile(t, descriptions, `{"Rex": "**Dieta:** Carnívoro\n\n**Descripción Física:** Enorme."}`)

	srv := New(Deps{
		Report:        report.NewLoader(report.DirSource{Dir: reportDir}, "/static/report"),
		Gallery:       gallery.NewReloader(gallery.FileCatalog{Path: descriptions}, gallery.NewPublisher(), gallery.ExhibitOptions{ImageBase: "/static/img", Frames: []string{"/static/Marcos/1.png"}}),
		Generator:     gen,
		Backend:       backend,
		StaticDir:     dir,
		UserAvatarURL: "/static/Marcos/usuario.jpg",
	})
	return &fixture{dir: dir, descriptions: descriptions, server: srv}
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, stubGenerator{}, stubBackend{})
	rec := do(t, f.server.Handler(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestPageListsExhibits(t *testing.T) {
	f := newFixture(t, stubGenerator{}, stubBackend{})
	rec := do(t, f.server.Handler(), http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`data-dino-name="Rex"`, `src="/static/img/Rex.png"`, "<strong>Dieta:</strong> Carnívoro", "/static/Marcos/1.png"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if strings.Contains(body, gallery.ErrorMessage) {
		t.Fatal("page must not show the gallery error")
	}
}

func TestPageShowsGalleryError(t *testing.T) {
	f := newFixture(t, stubGenerator{}, stubBackend{})
	if err := os.Remove(f.descriptions); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rec := do(t, f.server.Handler(), http.MethodGet, "/", nil)
	if !strings.Contains(rec.Body.String(), gallery.ErrorMessage) {
		t.Fatal("expected gallery error message on page")
	}
}

func TestReportFragment(t *testing.T) {
	f := newFixture(t, stubGenerator{}, stubBackend{})
	rec := do(t, f.server.Handler(), http.MethodGet, "/report", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Resumen de Capas", "gru (GRU", "0.8000", "Ligantosaurus", "/static/report/loss_curve.png"} {
		if !strings.Contains(body, want) {
			t.Fatalf("report missing %q", want)
		}
	}
}

func TestReportFailureShowsSingleMessage(t *testing.T) {
	f := newFixture(t, stubGenerator{}, stubBackend{})
	if err := os.Remove(filepath.Join(f.dir, "report", report.SamplesFile)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rec := do(t, f.server.Handler(), http.MethodGet, "/report", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "No se pudo cargar el informe del modelo") {
		t.Fatalf("expected report error message, got %q", body)
	}
	if strings.Contains(body, "Resumen de Capas") {
		t.Fatal("no partial report may be rendered")
	}
}

func TestGenerateReloadsGallery(t *testing.T) {
	var f *fixture
	gen := stubGenerator{onGenerate: func() {
		writeFile(t, f.descriptions, `{"Rex": "a", "Nuevosaurus": "b"}`)
	}}
	f = newFixture(t, gen, stubBackend{})
	h := f.server.Handler()
	do(t, h, http.MethodGet, "/", nil)

	rec := do(t, h, http.MethodPost, "/gallery/generate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp generateResp
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || !resp.OK || resp.Name != "Nuevosaurus" {
		t.Fatalf("unexpected response %+v, %v", resp, err)
	}
	if _, err := f.server.deps.Gallery.Publisher().Find("Nuevosaurus"); err != nil {
		t.Fatalf("expected new specimen on display: %v", err)
	}
}

func TestGenerateFailure(t *testing.T) {
	f := newFixture(t, stubGenerator{err: &museumapi.APIError{Status: 503, Detail: "El servicio no está disponible."}}, stubBackend{})
	rec := do(t, f.server.Handler(), http.MethodPost, "/gallery/generate", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var resp errResp
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.OK || resp.Error != "El servicio no está disponible." {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestGenerateFailureIsLogged(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "dinomuseum.log")
	if err := logging.InitFile(logPath); err != nil {
		t.Fatalf("InitFile: %v", err)
	}
	t.Cleanup(func() { _ = logging.Close() })

	f := newFixture(t, stubGenerator{err: errors.New("backend down")}, stubBackend{})
	do(t, f.server.Handler(), http.MethodPost, "/gallery/generate", nil)
	_ = logging.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "generate error: backend down") {
		t.Fatalf("expected generate failure in log, got %q", data)
	}
}

func openChat(t *testing.T, h http.Handler, name string) openChatResp {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/chat/open", openChatReq{Name: name})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat open: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp openChatResp
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestChatFlow(t *testing.T) {
	f := newFixture(t, stubGenerator{}, stubBackend{answer: "<b>GRRRR</b> Yo comer."})
	h := f.server.Handler()
	do(t, h, http.MethodGet, "/", nil)

	opened := openChat(t, h, "Rex")
	if opened.Greeting != "¡Hola! Soy Rex. ¿Qué te gustaría saber sobre mí?" {
		t.Fatalf("unexpected greeting %q", opened.Greeting)
	}
	if opened.AvatarURL != "/static/img/Rex.png" || opened.UserAvatarURL != "/static/Marcos/usuario.jpg" {
		t.Fatalf("unexpected avatars %+v", opened)
	}

	rec := do(t, h, http.MethodPost, "/chat", chatReq{SessionID: opened.SessionID, Question: "¿Qué comes?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp chatResp
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Answer != "<b>GRRRR</b> Yo comer." {
		t.Fatalf("unexpected answer %q", resp.Answer)
	}
}

func TestChatBackendFailureReturnsFallback(t *testing.T) {
	f := newFixture(t, stubGenerator{}, stubBackend{err: errors.New("down")})
	h := f.server.Handler()
	do(t, h, http.MethodGet, "/", nil)
	opened := openChat(t, h, "Rex")

	rec := do(t, h, http.MethodPost, "/chat", chatReq{SessionID: opened.SessionID, Question: "hola"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var resp chatResp
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Answer != chat.Fallback {
		t.Fatalf("expected fallback answer, got %q", resp.Answer)
	}
}

func TestChatRejectsBadRequests(t *testing.T) {
	f := newFixture(t, stubGenerator{}, stubBackend{answer: "x"})
	h := f.server.Handler()
	do(t, h, http.MethodGet, "/", nil)

	if rec := do(t, h, http.MethodPost, "/chat/open", openChatReq{Name: "Nadie"}); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown specimen: expected 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/chat", chatReq{SessionID: "missing", Question: "hola"}); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session: expected 404, got %d", rec.Code)
	}
	opened := openChat(t, h, "Rex")
	if rec := do(t, h, http.MethodPost, "/chat", chatReq{SessionID: opened.SessionID, Question: "   "}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty question: expected 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/chat", map[string]string{"session_id": opened.SessionID, "extra": "x"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rec.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	f := newFixture(t, stubGenerator{}, stubBackend{})
	writeFile(t, filepath.Join(f.dir, "style.css"), "body{}")
	rec := do(t, f.server.Handler(), http.MethodGet, "/static/style.css", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Fatalf("unexpected static response %d %q", rec.Code, rec.Body.String())
	}
}
