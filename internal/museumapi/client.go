// Package museumapi is the client for the museum backend: specimen generation
// and the dinosaur chat endpoint.
package museumapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mwiater/dinomuseum/internal/logging"
)

const (
	generatePath = "/api/generar-nombre"
	chatPath     = "/api/chat-with-dino"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

// Generated is the specimen returned by a successful generation.
type Generated struct {
	Name        string `json:"nombre_generado"`
	Description string `json:"descripcion_completa"`
	ImageURL    string `json:"url_imagen"`
}

type chatRequest struct {
	DinoContext  string `json:"dino_context"`
	UserQuestion string `json:"user_question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// Client talks to the museum backend at BaseURL.
type Client struct {
	baseURL string
	client  *http.Client
}

// New returns a Client with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient returns a Client using hc for all requests.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: hc}
}

func (c *Client) host() string {
	if u, err := url.Parse(c.baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return c.baseURL
}

// Generate asks the backend to create a new specimen. The backend stores it in
// the catalogue itself; callers reload the gallery afterwards.
func (c *Client) Generate(ctx context.Context) (*Generated, error) {
	logging.LogRequest("MUSEUM->API", c.host(), generatePath, map[string]string{"method": http.MethodGet})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+generatePath, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req, generatePath)
	if err != nil {
		return nil, err
	}
	var out Generated
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("museumapi: decode %s: %w", generatePath, err)
	}
	return &out, nil
}

// Chat sends question to the backend, with dinoContext as the specimen record
// the dinosaur answers from.
func (c *Client) Chat(ctx context.Context, dinoContext, question string) (string, error) {
	payload, err := json.Marshal(chatRequest{DinoContext: dinoContext, UserQuestion: question})
	if err != nil {
		return "", err
	}
	logging.LogRequest("MUSEUM->API", c.host(), chatPath, payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, chatPath)
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("museumapi: decode %s: %w", chatPath, err)
	}
	return out.Answer, nil
}

// do executes req and returns the body of a 2xx response. Any other status
// becomes an *APIError carrying the backend's "detail" when it sent one.
func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("API->MUSEUM", c.host(), endpoint, body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail any `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		switch d := payload.Detail.(type) {
		case string:
			detail = strings.TrimSpace(d)
		case nil:
		default:
			if raw, err := json.Marshal(d); err == nil {
				detail = string(raw)
			}
		}
	}
	if detail == "" {
		detail = fmt.Sprintf("Error del servidor: %d", status)
	}
	return &APIError{Status: status, Detail: detail}
}
