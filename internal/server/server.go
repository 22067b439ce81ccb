// Package server serves the museum page: the gallery, the model report, the
// generation trigger and the dinosaur chat.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/dinomuseum/internal/chat"
	"github.com/mwiater/dinomuseum/internal/gallery"
	"github.com/mwiater/dinomuseum/internal/logging"
	"github.com/mwiater/dinomuseum/internal/museumapi"
	"github.com/mwiater/dinomuseum/internal/report"
)

const maxBodyBytes = 64 << 10

// Generator creates a new specimen in the backend catalogue.
type Generator interface {
	Generate(ctx context.Context) (*museumapi.Generated, error)
}

// Deps are the collaborators a Server is assembled from.
type Deps struct {
	Report        *report.Loader
	Gallery       *gallery.Reloader
	Generator     Generator
	Backend       chat.Backend
	Sessions      *chat.SessionStore
	StaticDir     string
	UserAvatarURL string
}

// Server is the museum's HTTP front end.
type Server struct {
	deps Deps
	mux  *http.ServeMux
}

type errResp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type generateResp struct {
	OK   bool   `json:"ok"`
	Name string `json:"name,omitempty"`
}

type openChatReq struct {
	Name string `json:"name"`
}

type openChatResp struct {
	SessionID     string `json:"session_id"`
	Title         string `json:"title"`
	Greeting      string `json:"greeting"`
	AvatarURL     string `json:"avatar_url"`
	UserAvatarURL string `json:"user_avatar_url"`
}

type chatReq struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type chatResp struct {
	Answer string `json:"answer"`
}

// New assembles a Server from deps.
func New(deps Deps) *Server {
	if deps.Sessions == nil {
		deps.Sessions = chat.NewStore(256)
	}
	s := &Server{deps: deps, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("GET /report", s.handleReport)
	s.mux.HandleFunc("POST /gallery/generate", s.handleGenerate)
	s.mux.HandleFunc("POST /chat/open", s.handleOpenChat)
	s.mux.HandleFunc("POST /chat", s.handleChat)
	if deps.StaticDir != "" {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir))))
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe loads the gallery once, then serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.deps.Gallery.Reload(ctx); err != nil {
		logging.LogEvent("initial gallery load failed: %v", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.LogEvent("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Gallery.Publisher().Snapshot()
	if snap.Token == 0 {
		_ = s.deps.Gallery.Reload(r.Context())
		snap = s.deps.Gallery.Publisher().Snapshot()
	}

	var buf bytes.Buffer
	if err := renderPage(&buf, snap); err != nil {
		logging.LogEvent("page render error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	status := http.StatusOK

	rep, err := s.deps.Report.Load(r.Context())
	if err == nil {
		err = report.RenderHTML(&buf, rep)
	}
	if err != nil {
		logging.LogEvent("report error: %v", err)
		buf.Reset()
		status = http.StatusBadGateway
		if rerr := report.RenderError(&buf); rerr != nil {
			http.Error(w, report.ErrorMessage, status)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	logging.LogEvent("generate request from %s", r.RemoteAddr)
	generated, err := s.deps.Generator.Generate(r.Context())
	if err != nil {
		logging.LogEvent("generate error: %v", err)
		writeJSON(w, http.StatusBadGateway, errResp{OK: false, Error: err.Error()})
		return
	}
	// The backend has already stored the specimen; reload so it appears.
	if err := s.deps.Gallery.Reload(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, errResp{OK: false, Error: gallery.ErrorMessage})
		return
	}
	writeJSON(w, http.StatusOK, generateResp{OK: true, Name: generated.Name})
}

func (s *Server) handleOpenChat(w http.ResponseWriter, r *http.Request) {
	var req openChatReq
	if err := decodeJSON(w, r, &req, maxBodyBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{OK: false, Error: "invalid JSON: " + err.Error()})
		return
	}
	exhibit, err := s.deps.Gallery.Publisher().Find(req.Name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errResp{OK: false, Error: err.Error()})
		return
	}
	session, err := s.deps.Sessions.Open(exhibit.Name, exhibit.Description, exhibit.ImageURL)
	if err != nil {
		logging.LogEvent("chat open error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errResp{OK: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, openChatResp{
		SessionID:     session.ID,
		Title:         session.Title(),
		Greeting:      chat.Greeting(session.DinoName),
		AvatarURL:     session.AvatarURL,
		UserAvatarURL: s.deps.UserAvatarURL,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := decodeJSON(w, r, &req, maxBodyBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{OK: false, Error: "invalid JSON: " + err.Error()})
		return
	}
	session, err := s.deps.Sessions.Get(req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errResp{OK: false, Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errResp{OK: false, Error: "question is required"})
		return
	}

	answer, err := session.Send(r.Context(), s.deps.Backend, req.Question)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, chatResp{Answer: answer})
		return
	}
	writeJSON(w, http.StatusOK, chatResp{Answer: answer})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any, maxBytes int64) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
