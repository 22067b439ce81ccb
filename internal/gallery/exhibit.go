package gallery

import (
	"html/template"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
)

// PlaceholderImage is shown for a specimen without an image URL.
const PlaceholderImage = "/static/placeholder.png"

const missingPhysical = "**Descripción Física:** No disponible."

var (
	unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9 _]`)
	physicalRe       = regexp.MustCompile(`(?i)(\*){0,2}\s*Descripción Física:\s*(\*){0,2}`)
)

// Exhibit is one specimen as hung on the gallery wall.
type Exhibit struct {
	Name           string
	Description    string
	ImageURL       string
	FrameURL       string
	MainPlaque     template.HTML
	PhysicalPlaque template.HTML
}

// ExhibitOptions controls how exhibits are assembled.
type ExhibitOptions struct {
	// ImageBase is the URL prefix of the generated specimen images.
	ImageBase string
	// Frames are the decorative frame images; one is picked per exhibit.
	Frames []string
	// Pick returns an index in [0, n). Defaults to a random pick.
	Pick func(n int) int
}

// SafeFilename keeps ASCII letters, digits, spaces and underscores and trims
// trailing whitespace, matching the name the backend saves the image under.
func SafeFilename(name string) string {
	return strings.TrimRight(unsafeFilenameRe.ReplaceAllString(name, ""), " \t\r\n")
}

// ImageURL returns the URL of a specimen's image under base.
func ImageURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(SafeFilename(name)+".png")
}

// SplitDescription separates the physical description from the rest of the
// record. When the record has none, physical is a "not available" notice.
func SplitDescription(desc string) (summary, physical string) {
	loc := physicalRe.FindStringIndex(desc)
	if loc == nil {
		return desc, missingPhysical
	}
	return desc[:loc[0]], desc[loc[0]:]
}

// BuildExhibits assembles one exhibit per catalogue entry, in catalogue order.
func BuildExhibits(descs *Descriptions, opts ExhibitOptions) []Exhibit {
	if descs == nil {
		return nil
	}
	pick := opts.Pick
	if pick == nil {
		pick = rand.Intn
	}
	exhibits := make([]Exhibit, 0, descs.Len())
	for pair := descs.Oldest(); pair != nil; pair = pair.Next() {
		summary, physical := SplitDescription(pair.Value)
		ex := Exhibit{
			Name:           pair.Key,
			Description:    pair.Value,
			ImageURL:       ImageURL(opts.ImageBase, pair.Key),
			MainPlaque:     FormatTextToHTML(summary),
			PhysicalPlaque: FormatTextToHTML(physical),
		}
		if opts.ImageBase == "" {
			ex.ImageURL = PlaceholderImage
		}
		if len(opts.Frames) > 0 {
			ex.FrameURL = opts.Frames[pick(len(opts.Frames))]
		}
		exhibits = append(exhibits, ex)
	}
	return exhibits
}
