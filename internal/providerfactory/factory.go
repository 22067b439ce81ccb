// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"
	"strings"

	"github.com/mwiater/dinomuseum/internal/appconfig"
	"github.com/mwiater/dinomuseum/internal/chat"
	"github.com/mwiater/dinomuseum/internal/logging"
	"github.com/mwiater/dinomuseum/internal/museumapi"
	"github.com/mwiater/dinomuseum/internal/providers/ollama"
)

// NewBackend selects the chat backend named by the configuration: the museum
// backend's chat endpoint, or an Ollama host spoken to directly.
func NewBackend(cfg *appconfig.Config) (chat.Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.ChatBackend)) {
	case appconfig.ChatBackendMuseum, "":
		logging.LogEvent("chat backend: museum API at %s", cfg.APIBaseURL)
		return chat.MuseumBackend{Client: museumapi.New(cfg.APIBaseURL, cfg.RequestTimeout())}, nil
	case appconfig.ChatBackendOllama:
		logging.LogEvent("chat backend: ollama %s at %s", cfg.Ollama.Model, cfg.Ollama.URL)
		return chat.OllamaBackend{Provider: ollama.New(cfg.RequestTimeout()), Host: cfg.Ollama}, nil
	default:
		return nil, fmt.Errorf("unsupported chat backend %q", cfg.ChatBackend)
	}
}
