package gallery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mwiater/dinomuseum/internal/logging"
)

// ErrorMessage replaces the gallery when the catalogue cannot be loaded.
const ErrorMessage = "No se pudo cargar la galería. Inténtalo de nuevo más tarde."

// ErrUnknownSpecimen is returned by Find for a name not on display.
var ErrUnknownSpecimen = errors.New("unknown specimen")

// Snapshot is what the gallery page currently shows.
type Snapshot struct {
	Token     uint64
	Exhibits  []Exhibit
	Err       error
	UpdatedAt time.Time
}

// Publisher holds the gallery on display. Reloads can complete out of order,
// so each one takes a token from Begin and only the most recently issued
// token may publish.
type Publisher struct {
	mu      sync.Mutex
	issued  uint64
	current Snapshot
}

// NewPublisher returns an empty Publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Begin issues a fresh reload token.
func (p *Publisher) Begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	return p.issued
}

// Publish applies the outcome of the reload holding token. It reports false,
// and changes nothing, when a newer reload has been started since.
func (p *Publisher) Publish(token uint64, exhibits []Exhibit, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token != p.issued {
		logging.LogEvent("gallery: dropping stale reload %d (latest %d)", token, p.issued)
		return false
	}
	p.current = Snapshot{Token: token, Exhibits: exhibits, Err: err, UpdatedAt: time.Now()}
	return true
}

// Snapshot returns the gallery currently on display.
func (p *Publisher) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Find returns the exhibit named name from the current snapshot.
func (p *Publisher) Find(name string) (Exhibit, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ex := range p.current.Exhibits {
		if ex.Name == name {
			return ex, nil
		}
	}
	return Exhibit{}, ErrUnknownSpecimen
}

// Reloader reloads the catalogue and publishes the resulting exhibits.
type Reloader struct {
	catalog   Catalog
	publisher *Publisher
	opts      ExhibitOptions
}

// NewReloader wires a catalogue to a publisher.
func NewReloader(catalog Catalog, publisher *Publisher, opts ExhibitOptions) *Reloader {
	return &Reloader{catalog: catalog, publisher: publisher, opts: opts}
}

// Publisher returns the publisher the reloader writes to.
func (r *Reloader) Publisher() *Publisher {
	return r.publisher
}

// Reload loads the catalogue and publishes it under a fresh token. A failed
// load publishes the error so the page shows ErrorMessage.
func (r *Reloader) Reload(ctx context.Context) error {
	token := r.publisher.Begin()
	descs, err := r.catalog.Load(ctx)
	if err != nil {
		logging.LogEvent("gallery: could not load catalogue: %v", err)
		r.publisher.Publish(token, nil, err)
		return err
	}
	exhibits := BuildExhibits(descs, r.opts)
	if r.publisher.Publish(token, exhibits, nil) {
		logging.LogEvent("gallery: published %d exhibits (reload %d)", len(exhibits), token)
	}
	return nil
}
