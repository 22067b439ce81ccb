package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/mwiater/dinomuseum/internal/appconfig"
	"github.com/mwiater/dinomuseum/internal/gallery"
	"github.com/mwiater/dinomuseum/internal/museumapi"
	"github.com/mwiater/dinomuseum/internal/providerfactory"
	"github.com/mwiater/dinomuseum/internal/report"
)

// ReportLoader returns the report loader configured by cfg. A reportURL takes
// precedence over reportDir.
func ReportLoader(cfg *appconfig.Config) *report.Loader {
	var src report.Source = report.DirSource{Dir: cfg.ReportDir}
	if strings.TrimSpace(cfg.ReportURL) != "" {
		src = report.HTTPSource{BaseURL: cfg.ReportURL, Client: &http.Client{Timeout: cfg.RequestTimeout()}}
	}
	return report.NewLoader(src, cfg.ReportPublicPath)
}

// Catalog returns the specimen catalogue configured by cfg. A descriptionsURL
// takes precedence over descriptionsPath.
func Catalog(cfg *appconfig.Config) gallery.Catalog {
	if strings.TrimSpace(cfg.DescriptionsURL) != "" {
		return gallery.HTTPCatalog{URL: cfg.DescriptionsURL, Client: &http.Client{Timeout: cfg.RequestTimeout()}}
	}
	return gallery.FileCatalog{Path: cfg.DescriptionsPath}
}

// ExhibitOptions returns how exhibits are assembled under cfg.
func ExhibitOptions(cfg *appconfig.Config) gallery.ExhibitOptions {
	return gallery.ExhibitOptions{ImageBase: cfg.ImageBaseURL, Frames: cfg.Frames}
}

// LoadExhibits loads the catalogue once, outside any publisher.
func LoadExhibits(ctx context.Context, cfg *appconfig.Config) ([]gallery.Exhibit, error) {
	descs, err := Catalog(cfg).Load(ctx)
	if err != nil {
		return nil, err
	}
	return gallery.BuildExhibits(descs, ExhibitOptions(cfg)), nil
}

// FromConfig assembles a Server from cfg.
func FromConfig(cfg *appconfig.Config) (*Server, error) {
	backend, err := providerfactory.NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	return New(Deps{
		Report:        ReportLoader(cfg),
		Gallery:       gallery.NewReloader(Catalog(cfg), gallery.NewPublisher(), ExhibitOptions(cfg)),
		Generator:     museumapi.New(cfg.APIBaseURL, cfg.RequestTimeout()),
		Backend:       backend,
		StaticDir:     cfg.StaticDir,
		UserAvatarURL: cfg.UserAvatarURL,
	}), nil
}
