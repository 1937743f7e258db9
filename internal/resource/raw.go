package resource

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/catalogbuilder/internal/pages"
	"git.home.luguber.info/inful/catalogbuilder/internal/slug"
)

// schemaVersion tells the two descriptor shapes apart.
type schemaVersion int

const (
	// schemaLegacy carries a single author in author/author_institute.
	schemaLegacy schemaVersion = iota + 1
	// schemaCurrent carries an authors list.
	schemaCurrent
)

// rawDescriptor mirrors the on-disk YAML. Unknown fields are ignored.
type rawDescriptor struct {
	ItemID      string `yaml:"item_id"`
	Title       string `yaml:"title"`
	Topic       string `yaml:"topic"`
	TopicPageID string `yaml:"topic_page_id"`
	LangCode    string `yaml:"lang_code"`

	ResourceType  string `yaml:"resource_type"`
	URL           string `yaml:"url"`
	DateReleased  string `yaml:"date_released"`
	Description   string `yaml:"description_short"`
	TimeRequired  string `yaml:"time_required"`
	Prerequisites string `yaml:"prerequisites"`

	Keywords   stringList `yaml:"keywords"`
	FitFor     stringList `yaml:"fit_for"`
	References stringList `yaml:"references"`

	Author          string     `yaml:"author"`
	AuthorInstitute string     `yaml:"author_institute"`
	Authors         authorList `yaml:"authors"`

	MultipageApp           flag  `yaml:"multipage_app"`
	NumPages               count `yaml:"num_pages"`
	InteractivePlots       flag  `yaml:"interactive_plots"`
	NumInteractivePlots    count `yaml:"num_interactive_plots"`
	AssessmentsIncluded    flag  `yaml:"assessments_included"`
	NumAssessmentQuestions count `yaml:"num_assessment_questions"`
	VideosIncluded         flag  `yaml:"videos_included"`
	NumVideos              count `yaml:"num_videos"`

	Figures figureList `yaml:"figures"`

	CatalogCategory       string `yaml:"catalog_category"`
	CatalogSubcategory    string `yaml:"catalog_subcategory"`
	CatalogSubsubcategory string `yaml:"catalog_subsubcategory"`
}

type rawAuthor struct {
	Name        string
	Affiliation string
	valid       bool
}

// UnmarshalYAML skips list entries that are not mappings.
func (a *rawAuthor) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	var v struct {
		Name        string `yaml:"name"`
		Affiliation string `yaml:"affiliation"`
	}
	if err := n.Decode(&v); err != nil {
		return err
	}
	*a = rawAuthor{Name: v.Name, Affiliation: v.Affiliation, valid: true}
	return nil
}

type rawFigure struct {
	ID               count  `yaml:"id"`
	OriginalFilename string `yaml:"original_filename"`
	Type             string `yaml:"type"`
	Caption          string `yaml:"caption"`
	IsCover          flag   `yaml:"is_cover"`
}

// authorList accepts only a sequence; any other shape decodes as no authors so
// the legacy author fields apply.
type authorList []rawAuthor

func (l *authorList) UnmarshalYAML(n *yaml.Node) error {
	*l = nil
	if n.Kind != yaml.SequenceNode {
		return nil
	}
	var items []rawAuthor
	if err := n.Decode(&items); err != nil {
		return err
	}
	*l = items
	return nil
}

// figureList keeps the mapping entries of a sequence. Anything else is no figures.
type figureList []rawFigure

func (l *figureList) UnmarshalYAML(n *yaml.Node) error {
	*l = nil
	if n.Kind != yaml.SequenceNode {
		return nil
	}
	for _, c := range n.Content {
		if c.Kind != yaml.MappingNode {
			continue
		}
		var f rawFigure
		if err := c.Decode(&f); err != nil {
			return err
		}
		*l = append(*l, f)
	}
	return nil
}

// stringList accepts a scalar or a sequence and keeps trimmed, non-empty entries.
type stringList []string

func (l *stringList) UnmarshalYAML(n *yaml.Node) error {
	var items []string
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag != "!!null" {
			items = []string{n.Value}
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if c.Kind == yaml.ScalarNode && c.Tag != "!!null" {
				items = append(items, c.Value)
			}
		}
	}
	out := make(stringList, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// flag accepts YAML booleans as well as yes/no style strings.
type flag bool

func (f *flag) UnmarshalYAML(n *yaml.Node) error {
	*f = flag(n.Kind == yaml.ScalarNode && pages.ParseBool(n.Value))
	return nil
}

// count accepts integers and numeric strings; anything else is zero.
type count int

func (c *count) UnmarshalYAML(n *yaml.Node) error {
	*c = 0
	if n.Kind != yaml.ScalarNode {
		return nil
	}
	v := strings.TrimSpace(n.Value)
	if i, err := strconv.Atoi(v); err == nil {
		*c = count(i)
	} else if f, err := strconv.ParseFloat(v, 64); err == nil {
		*c = count(int(f))
	}
	return nil
}

func (r *rawDescriptor) version() schemaVersion {
	if len(r.Authors) > 0 {
		return schemaCurrent
	}
	return schemaLegacy
}

// migrate converts a raw descriptor into the canonical shape.
func (r *rawDescriptor) migrate(path, stem string) *Descriptor {
	d := &Descriptor{
		Path:          path,
		FileStem:      stem,
		ItemID:        strings.TrimSpace(r.ItemID),
		Title:         strings.TrimSpace(r.Title),
		Topic:         strings.TrimSpace(r.Topic),
		TopicPageID:   strings.TrimSpace(r.TopicPageID),
		LangCode:      strings.TrimSpace(r.LangCode),
		ResourceType:  strings.TrimSpace(r.ResourceType),
		URL:           strings.TrimSpace(r.URL),
		DateReleased:  strings.TrimSpace(r.DateReleased),
		Description:   strings.TrimSpace(r.Description),
		TimeRequired:  strings.TrimSpace(r.TimeRequired),
		Prerequisites: strings.TrimSpace(r.Prerequisites),
		Keywords:      []string(r.Keywords),
		FitFor:        []string(r.FitFor),
		References:    []string(r.References),
		App: AppDetails{
			MultipageApp:           bool(r.MultipageApp),
			NumPages:               int(r.NumPages),
			InteractivePlots:       bool(r.InteractivePlots),
			NumInteractivePlots:    int(r.NumInteractivePlots),
			AssessmentsIncluded:    bool(r.AssessmentsIncluded),
			NumAssessmentQuestions: int(r.NumAssessmentQuestions),
			VideosIncluded:         bool(r.VideosIncluded),
			NumVideos:              int(r.NumVideos),
		},
		CatalogCategory:       strings.TrimSpace(r.CatalogCategory),
		CatalogSubcategory:    strings.TrimSpace(r.CatalogSubcategory),
		CatalogSubsubcategory: strings.TrimSpace(r.CatalogSubsubcategory),
	}
	if d.Title == "" {
		d.Title = stem
	}

	switch r.version() {
	case schemaCurrent:
		for _, a := range r.Authors {
			name := strings.TrimSpace(a.Name)
			if !a.valid || name == "" {
				continue
			}
			aff := strings.TrimSpace(a.Affiliation)
			if aff == "" {
				aff = Placeholder
			}
			d.Authors = append(d.Authors, Author{Name: name, Affiliation: aff})
		}
	case schemaLegacy:
		if name := strings.TrimSpace(r.Author); name != "" {
			aff := strings.TrimSpace(r.AuthorInstitute)
			if aff == "" {
				aff = LegacyAffiliation
			}
			d.Authors = []Author{{Name: name, Affiliation: aff}}
		}
	}

	for _, f := range r.Figures {
		d.Figures = append(d.Figures, Figure{
			ID:               int(f.ID),
			OriginalFilename: strings.TrimSpace(f.OriginalFilename),
			Type:             strings.TrimSpace(f.Type),
			Caption:          strings.TrimSpace(f.Caption),
			IsCover:          bool(f.IsCover),
		})
	}

	if d.ItemID != "" && !strings.HasPrefix(d.ItemID, Placeholder) {
		d.ResourceID = d.ItemID
	} else {
		d.ResourceID = slug.Resource(d.Title)
	}
	return d
}
