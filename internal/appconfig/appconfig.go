// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting the museum configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout covers the slowest backend call: a full specimen generation.
	defaultRequestTimeout = 1000 * time.Second
	// defaultReportDir is the report bundle shipped with the museum assets.
	defaultReportDir = "static/report_20251016_170934"
)

// Chat backends understood by the chat widget.
const (
	ChatBackendMuseum = "museum"
	ChatBackendOllama = "ollama"
)

// Config represents the top-level application configuration.
type Config struct {
	Addr             string     `json:"addr" mapstructure:"addr"`
	APIBaseURL       string     `json:"apiBaseURL" mapstructure:"apiBaseURL"`
	StaticDir        string     `json:"staticDir" mapstructure:"staticDir"`
	ReportDir        string     `json:"reportDir,omitempty" mapstructure:"reportDir"`
	ReportURL        string     `json:"reportURL,omitempty" mapstructure:"reportURL"`
	ReportPublicPath string     `json:"reportPublicPath" mapstructure:"reportPublicPath"`
	DescriptionsPath string     `json:"descriptionsPath,omitempty" mapstructure:"descriptionsPath"`
	DescriptionsURL  string     `json:"descriptionsURL,omitempty" mapstructure:"descriptionsURL"`
	ImageBaseURL     string     `json:"imageBaseURL" mapstructure:"imageBaseURL"`
	Frames           []string   `json:"frames" mapstructure:"frames"`
	UserAvatarURL    string     `json:"userAvatarURL" mapstructure:"userAvatarURL"`
	ChatBackend      string     `json:"chatBackend" mapstructure:"chatBackend"`
	Ollama           OllamaHost `json:"ollama" mapstructure:"ollama"`
	TimeoutSeconds   int        `json:"timeout,omitempty" mapstructure:"timeout"`
	LogFile          string     `json:"logFile,omitempty" mapstructure:"logFile"`
	Debug            bool       `json:"debug" mapstructure:"debug"`
	ConfigPath       string     `json:"-" mapstructure:"-"`
}

// OllamaHost is the Ollama endpoint used when the chat backend is "ollama".
type OllamaHost struct {
	Name        string   `json:"name" mapstructure:"name"`
	URL         string   `json:"url" mapstructure:"url"`
	Model       string   `json:"model" mapstructure:"model"`
	Temperature *float64 `json:"temperature,omitempty" mapstructure:"temperature"`
	KeepAlive   string   `json:"keepAlive,omitempty" mapstructure:"keepAlive"`
}

// Default returns the configuration used when no file or flag says otherwise.
func Default() Config {
	temperature := 0.5
	return Config{
		Addr:             ":8080",
		APIBaseURL:       "http://127.0.0.1:8000",
		StaticDir:        "static",
		ReportDir:        defaultReportDir,
		ReportPublicPath: "/" + defaultReportDir,
		DescriptionsPath: "static/dino_descriptions.json",
		ImageBaseURL:     "/static/Carpetanosaurio rex",
		Frames: []string{
			"/static/Marcos/1.png",
			"/static/Marcos/2.png",
			"/static/Marcos/3.png",
		},
		UserAvatarURL: "/static/Marcos/usuario.jpg",
		ChatBackend:   ChatBackendMuseum,
		Ollama: OllamaHost{
			Name:        "ollama",
			URL:         "http://127.0.0.1:11434",
			Model:       "gemma3:4b",
			Temperature: &temperature,
			KeepAlive:   "5m",
		},
		TimeoutSeconds: int(defaultRequestTimeout.Seconds()),
	}
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "dinomuseum.log"
}

// Validate reports configuration combinations the museum cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.ChatBackend)) {
	case ChatBackendMuseum:
		if strings.TrimSpace(c.APIBaseURL) == "" {
			return errors.New("apiBaseURL is required for the museum chat backend")
		}
	case ChatBackendOllama:
		if strings.TrimSpace(c.Ollama.URL) == "" || strings.TrimSpace(c.Ollama.Model) == "" {
			return errors.New("ollama.url and ollama.model are required for the ollama chat backend")
		}
	default:
		return fmt.Errorf("unknown chatBackend %q (want %q or %q)", c.ChatBackend, ChatBackendMuseum, ChatBackendOllama)
	}
	if strings.TrimSpace(c.ReportDir) == "" && strings.TrimSpace(c.ReportURL) == "" {
		return errors.New("one of reportDir or reportURL must be set")
	}
	if strings.TrimSpace(c.DescriptionsPath) == "" && strings.TrimSpace(c.DescriptionsURL) == "" {
		return errors.New("one of descriptionsPath or descriptionsURL must be set")
	}
	return nil
}

// Load reads the configuration at path on top of Default and validates the result.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %q: %w", path, err)
	}
	config.ConfigPath = path
	return config, nil
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	config := Default()
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
