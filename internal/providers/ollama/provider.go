// internal/providers/ollama/provider.go
// Package ollama provides a ChatProvider backed by the Ollama /api/chat endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mwiater/dinomuseum/internal/logging"
	"github.com/mwiater/dinomuseum/internal/providers"
)

const chatEndpoint = "/api/chat"

// Provider implements the providers.ChatProvider interface using Ollama HTTP APIs.
type Provider struct {
	client  *http.Client
	timeout time.Duration
}

// New constructs a Provider with the given request timeout.
func New(timeout time.Duration) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: timeout,
	}
}

// streamChunk is one line of a streaming /api/chat response, or the whole
// body when streaming is off.
type streamChunk struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done          bool  `json:"done"`
	TotalDuration int64 `json:"total_duration"`
	EvalCount     int   `json:"eval_count"`
}

// Stream issues a chat request and forwards output to the provided callbacks.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	messages := req.History
	if req.SystemPrompt != "" {
		messages = append([]providers.ChatMessage{{Role: "system", Content: req.SystemPrompt}}, messages...)
	}
	if len(messages) == 0 {
		messages = []providers.ChatMessage{}
	}
	hostID := hostIdentifier(req.Host.Name, req.Host.URL)

	streamEnabled := !req.DisableStreaming
	payload := map[string]any{
		"model":    req.Host.Model,
		"messages": messages,
		"options":  buildOptions(req.Host.Temperature),
		"stream":   streamEnabled,
	}
	if strings.TrimSpace(req.Host.KeepAlive) != "" {
		payload["keep_alive"] = req.Host.KeepAlive
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	logging.LogRequest("MUSEUM->LLM", hostID, chatEndpoint, body)

	streamCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(streamCtx, http.MethodPost, strings.TrimRight(req.Host.URL, "/")+chatEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logging.LogRequest("LLM->MUSEUM", hostID, chatEndpoint, body)
		return fmt.Errorf("ollama: /api/chat returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if !streamEnabled {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		logging.LogRequest("LLM->MUSEUM", hostID, chatEndpoint, body)
		var result streamChunk
		if err := json.Unmarshal(body, &result); err != nil {
			return err
		}
		if callbacks.OnChunk != nil && strings.TrimSpace(result.Message.Content) != "" {
			role := result.Message.Role
			if role == "" {
				role = "assistant"
			}
			if err := callbacks.OnChunk(providers.ChatMessage{Role: role, Content: result.Message.Content}); err != nil {
				return err
			}
		}
		return complete(callbacks, req.Host.Model, result)
	}

	decoder := json.NewDecoder(resp.Body)
	var final streamChunk
	for {
		var chunk streamChunk
		if err := decoder.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if data, err := json.Marshal(chunk); err == nil {
			logging.LogRequest("LLM->MUSEUM", hostID, chatEndpoint, data)
		}

		if callbacks.OnChunk != nil && chunk.Message.Content != "" {
			if err := callbacks.OnChunk(providers.ChatMessage{Role: chunk.Message.Role, Content: chunk.Message.Content}); err != nil {
				return err
			}
		}

		if chunk.Done {
			final = chunk
			break
		}
	}

	return complete(callbacks, req.Host.Model, final)
}

func complete(callbacks providers.StreamCallbacks, model string, final streamChunk) error {
	if callbacks.OnComplete == nil {
		return nil
	}
	modelName := final.Model
	if modelName == "" {
		modelName = model
	}
	return callbacks.OnComplete(providers.StreamMetadata{
		Model:         modelName,
		CreatedAt:     time.Now(),
		Done:          final.Done,
		TotalDuration: final.TotalDuration,
		EvalCount:     final.EvalCount,
	})
}

func buildOptions(temperature *float64) map[string]any {
	options := map[string]any{}
	if temperature != nil {
		options["temperature"] = *temperature
	}
	return options
}

// hostIdentifier prefers the configured name, falling back to the URL host.
func hostIdentifier(name, rawURL string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	return rawURL
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}
