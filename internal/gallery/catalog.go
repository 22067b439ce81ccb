// Package gallery builds the museum exhibits from the specimen catalogue
// (dino_descriptions.json) and publishes them to the page.
package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Descriptions maps a specimen name to its full description, in file order.
type Descriptions = orderedmap.OrderedMap[string, string]

// Catalog loads the current specimen descriptions.
type Catalog interface {
	Load(ctx context.Context) (*Descriptions, error)
}

// LoadDescriptions decodes a dino_descriptions.json document.
func LoadDescriptions(r io.Reader) (*Descriptions, error) {
	descs := orderedmap.New[string, string]()
	if err := json.NewDecoder(r).Decode(descs); err != nil {
		return nil, fmt.Errorf("decode descriptions: %w", err)
	}
	return descs, nil
}

// FileCatalog reads the catalogue from a local file.
type FileCatalog struct {
	Path string
}

// Load implements Catalog.
func (c FileCatalog) Load(_ context.Context) (*Descriptions, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadDescriptions(f)
}

// HTTPCatalog fetches the catalogue over HTTP. Every request carries a
// "v=<unix millis>" query parameter so intermediate caches never serve a
// catalogue older than the last generation.
type HTTPCatalog struct {
	URL    string
	Client *http.Client
	Now    func() time.Time
}

// Load implements Catalog.
func (c HTTPCatalog) Load(ctx context.Context) (*Descriptions, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, err
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	q := u.Query()
	q.Set("v", strconv.FormatInt(now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}
	return LoadDescriptions(resp.Body)
}
