package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		def := Default()
		cfg = &def
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:             %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Listen Address:    %s\n", cfg.Addr)
	fmt.Fprintf(out, "  API Base URL:      %s\n", cfg.APIBaseURL)
	fmt.Fprintf(out, "  Static Dir:        %s\n", cfg.StaticDir)
	if cfg.ReportURL != "" {
		fmt.Fprintf(out, "  Report URL:        %s\n", cfg.ReportURL)
	} else {
		fmt.Fprintf(out, "  Report Dir:        %s\n", cfg.ReportDir)
	}
	fmt.Fprintf(out, "  Report Public:     %s\n", cfg.ReportPublicPath)
	if cfg.DescriptionsURL != "" {
		fmt.Fprintf(out, "  Descriptions URL:  %s\n", cfg.DescriptionsURL)
	} else {
		fmt.Fprintf(out, "  Descriptions Path: %s\n", cfg.DescriptionsPath)
	}
	fmt.Fprintf(out, "  Image Base URL:    %s\n", cfg.ImageBaseURL)
	fmt.Fprintf(out, "  Frames:            %v\n", cfg.Frames)
	fmt.Fprintf(out, "  Chat Backend:      %s\n", cfg.ChatBackend)
	if cfg.ChatBackend == ChatBackendOllama {
		fmt.Fprintf(out, "  Ollama URL:        %s\n", cfg.Ollama.URL)
		fmt.Fprintf(out, "  Ollama Model:      %s\n", cfg.Ollama.Model)
	}
	fmt.Fprintf(out, "  Request Timeout:   %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Log File:          %s\n", cfg.LogFilePath())
}
