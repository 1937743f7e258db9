// Package resource loads teaching-resource descriptors and indexes them by page key.
package resource

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Placeholder marks a field the course manager still has to fill in.
const Placeholder = "TO_BE_FILLED_BY_COURSE_MANAGER"

// LegacyAffiliation is used for single-author descriptors without an institute.
const LegacyAffiliation = "N/A"

// Author is one resource author. Name is never blank.
type Author struct {
	Name        string
	Affiliation string
}

// Figure is one image attached to a resource.
type Figure struct {
	ID               int
	OriginalFilename string
	Type             string
	Caption          string
	IsCover          bool
}

// AppDetails are the optional counters recorded for interactive apps.
// Each count is only meaningful when its flag is set.
type AppDetails struct {
	MultipageApp           bool
	NumPages               int
	InteractivePlots       bool
	NumInteractivePlots    int
	AssessmentsIncluded    bool
	NumAssessmentQuestions int
	VideosIncluded         bool
	NumVideos              int
}

// Descriptor is the canonical, normalized form of one descriptor file.
type Descriptor struct {
	Path     string // source file
	FileStem string // file name without extension; names the figure folder

	ItemID      string
	ResourceID  string
	Title       string
	Topic       string
	TopicPageID string

	ResourceType  string
	URL           string
	DateReleased  string
	Description   string
	TimeRequired  string
	Prerequisites string
	LangCode      string

	Keywords   []string
	FitFor     []string
	References []string
	Authors    []Author
	App        AppDetails
	Figures    []Figure

	CatalogCategory       string
	CatalogSubcategory    string
	CatalogSubsubcategory string
}

// Key is the page key the descriptor attaches to: topic_page_id when set,
// otherwise the topic title. Empty means the descriptor cannot be placed.
func (d *Descriptor) Key() string {
	if d.TopicPageID != "" {
		return d.TopicPageID
	}
	return d.Topic
}

// IsApp reports whether the resource type denotes an interactive (Streamlit) app.
func (d *Descriptor) IsApp() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(d.ResourceType)), "streamlit")
}

// HasReleaseDate reports whether DateReleased holds a real value.
func (d *Descriptor) HasReleaseDate() bool {
	v := strings.TrimSpace(d.DateReleased)
	return v != "" && !strings.HasPrefix(strings.ToUpper(v), "TO_BE_FILLED")
}

// Cover returns the first figure flagged as cover, else the first figure.
func (d *Descriptor) Cover() (Figure, bool) {
	if len(d.Figures) == 0 {
		return Figure{}, false
	}
	for _, f := range d.Figures {
		if f.IsCover {
			return f, true
		}
	}
	return d.Figures[0], true
}

// OtherFigures returns every figure whose id differs from the cover's id.
func (d *Descriptor) OtherFigures() []Figure {
	cover, ok := d.Cover()
	if !ok {
		return nil
	}
	var out []Figure
	for _, f := range d.Figures {
		if f.ID != cover.ID {
			out = append(out, f)
		}
	}
	return out
}

// FigureURL builds <prefix>/<stem>/<stem>_fig<id><ext> using the lowercased
// extension of the original upload. It returns "" when the stem, a positive id
// or the extension is missing.
func FigureURL(prefix, stem string, fig Figure) string {
	ext := strings.ToLower(filepath.Ext(fig.OriginalFilename))
	if stem == "" || fig.ID <= 0 || ext == "" || ext == "." {
		return ""
	}
	name := stem + "_fig" + strconv.Itoa(fig.ID) + ext
	return strings.TrimRight(prefix, "/") + "/" + stem + "/" + name
}
