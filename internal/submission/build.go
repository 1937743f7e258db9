package submission

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/catalogbuilder/internal/catalog"
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/catalogbuilder/internal/resource"
	"git.home.luguber.info/inful/catalogbuilder/internal/slug"
)

// Mode says how the location relates to the existing catalog.
type Mode int

const (
	// ModeExisting attaches to an existing page.
	ModeExisting Mode = iota
	// ModeNewSubcategory proposes a subcategory under an existing category.
	ModeNewSubcategory
	// ModeNewSubSubcategory proposes a sub-subcategory under an existing subcategory.
	ModeNewSubSubcategory
	// ModeNewCategory proposes a whole new category.
	ModeNewCategory
)

func (m Mode) String() string {
	switch m {
	case ModeNewSubcategory:
		return "new-subcategory"
	case ModeNewSubSubcategory:
		return "new-subsubcategory"
	case ModeNewCategory:
		return "new-category"
	default:
		return "existing"
	}
}

// NoEntry stands in for an empty catalog location label.
const NoEntry = "—"

const timestampLayout = "20060102_150405"

// Submission is a validated, resolved contribution ready to be written.
type Submission struct {
	Descriptor    *resource.Descriptor
	Language      catalog.Language
	Mode          Mode
	HierarchyBase string
	Prefix        string // hierarchy base with the language applied
	BaseName      string // file name without extension
	FigureFiles   []string
}

// Build validates answers against the catalog and derives the descriptor and
// bundle names. now stamps the file name.
func Build(cat *catalog.Catalog, a *Answers, now time.Time) (*Submission, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	lang, err := language(cat, a.Language)
	if err != nil {
		return nil, err
	}

	loc, err := locate(cat, a.Location)
	if err != nil {
		return nil, err
	}

	d := &resource.Descriptor{
		ItemID:                resource.Placeholder,
		Title:                 strings.TrimSpace(a.Title),
		Topic:                 catalog.StripNumericPrefix(loc.topic),
		TopicPageID:           loc.pageID,
		ResourceType:          strings.TrimSpace(a.Type),
		URL:                   strings.TrimSpace(a.URL),
		DateReleased:          resource.Placeholder,
		Description:           strings.TrimSpace(a.Description),
		TimeRequired:          strings.TrimSpace(a.TimeRequired),
		Prerequisites:         strings.TrimSpace(a.Prerequisites),
		LangCode:              lang.Code,
		Keywords:              a.Keywords(),
		FitFor:                splitNonEmpty(a.FitFor),
		References:            a.References(),
		CatalogCategory:       loc.category,
		CatalogSubcategory:    loc.subcategory,
		CatalogSubsubcategory: loc.subsubcategory,
	}
	d.ResourceID = slug.Resource(d.Title)
	if a.IsStreamlit() {
		d.App = appDetails(a.App)
	}
	for _, au := range a.Authors {
		name := strings.TrimSpace(au.Name)
		if name == "" {
			continue
		}
		aff := strings.TrimSpace(au.Affiliation)
		if aff == "" {
			aff = resource.Placeholder
		}
		d.Authors = append(d.Authors, resource.Author{Name: name, Affiliation: aff})
	}

	prefix := ApplyLanguage(loc.base, lang.Code)

	author := "unknown"
	if len(d.Authors) > 0 {
		author = d.Authors[0].Name
	}
	base := prefix + "_" + slug.Slug(author) + "_" + now.Format(timestampLayout)
	d.FileStem = base
	d.Path = base + ".yaml"

	s := &Submission{
		Descriptor:    d,
		Language:      lang,
		Mode:          loc.mode,
		HierarchyBase: loc.base,
		Prefix:        prefix,
		BaseName:      base,
	}
	for i, f := range a.Figures {
		d.Figures = append(d.Figures, resource.Figure{
			ID:               i + 1,
			OriginalFilename: filepath.Base(f.Path),
			Type:             figureType(f.Type),
			Caption:          strings.TrimSpace(f.Caption),
			IsCover:          f.IsCover,
		})
		s.FigureFiles = append(s.FigureFiles, f.Path)
	}
	return s, nil
}

// FigureName is the bundle file name of the figure at index i (zero based).
func (s *Submission) FigureName(i int) string {
	ext := strings.ToLower(filepath.Ext(s.FigureFiles[i]))
	return fmt.Sprintf("%s_fig%d%s", s.BaseName, s.Descriptor.Figures[i].ID, ext)
}

// ApplyLanguage makes the language visible at the end of a file prefix. A
// prefix already ending in lang is returned unchanged; any other prefix,
// including one ending in another language code, gets "_<lang>" appended.
func ApplyLanguage(prefix, lang string) string {
	parts := strings.Split(prefix, "_")
	if parts[len(parts)-1] == lang {
		return prefix
	}
	return prefix + "_" + lang
}

type location struct {
	mode                                  Mode
	pageID, topic, base                   string
	category, subcategory, subsubcategory string
}

func locate(cat *catalog.Catalog, l Location) (location, error) {
	trim := strings.TrimSpace
	proposed := func(label string) string {
		if label = trim(label); label == "" {
			return NoEntry
		}
		return label + " (proposed)"
	}
	orNone := func(label string) string {
		if label = trim(label); label == "" {
			return NoEntry
		}
		return label
	}

	if name := trim(l.NewCategory); name != "" {
		parts := []string{slug.Slug(name)}
		if sub := trim(l.NewSubcategory); sub != "" {
			parts = append(parts, slug.Slug(sub))
			if subsub := trim(l.NewSubSubcategory); subsub != "" {
				parts = append(parts, slug.Slug(subsub))
			}
		}
		return location{
			mode:           ModeNewCategory,
			topic:          name,
			base:           strings.Join(parts, "_"),
			category:       proposed(name),
			subcategory:    proposed(l.NewSubcategory),
			subsubcategory: proposed(l.NewSubSubcategory),
		}, nil
	}

	category := trim(l.Category)
	catNode, ok := cat.Find(category)
	if !ok {
		return location{}, notFound([]string{category})
	}

	if name := trim(l.NewSubcategory); name != "" {
		parts := []string{head(catNode.PageID(), 2), slug.Slug(name)}
		subsub := NoEntry
		if s := trim(l.NewSubSubcategory); s != "" {
			parts = append(parts, slug.Slug(s))
			subsub = proposed(s)
		}
		return location{
			mode:           ModeNewSubcategory,
			topic:          name,
			base:           strings.Join(parts, "_"),
			category:       category,
			subcategory:    proposed(name),
			subsubcategory: subsub,
		}, nil
	}

	sub := trim(l.Subcategory)
	if name := trim(l.NewSubSubcategory); name != "" {
		subNode, ok := cat.Find(category, sub)
		if !ok {
			return location{}, notFound([]string{category, sub})
		}
		return location{
			mode:           ModeNewSubSubcategory,
			topic:          name,
			base:           head(subNode.PageID(), 4) + "_" + slug.Slug(name),
			category:       category,
			subcategory:    sub,
			subsubcategory: proposed(name),
		}, nil
	}

	sel := catalog.Selection{Category: category, Subcategory: sub, SubSubcategory: trim(l.SubSubcategory)}
	pageID, topic, err := cat.Resolve(sel)
	if err != nil {
		return location{}, errors.WrapError(err, errors.CategoryValidation, "unknown catalog location").Build()
	}
	return location{
		mode:           ModeExisting,
		pageID:         pageID,
		topic:          topic,
		base:           pageID,
		category:       category,
		subcategory:    orNone(sel.Subcategory),
		subsubcategory: orNone(sel.SubSubcategory),
	}, nil
}

func notFound(path []string) error {
	return errors.WrapError(&catalog.NotFoundError{Path: path}, errors.CategoryValidation, "unknown catalog location").Build()
}

func language(cat *catalog.Catalog, s string) (catalog.Language, error) {
	langs := cat.Languages()
	if strings.TrimSpace(s) == "" {
		return langs[0], nil
	}
	code, ok := cat.LanguageCode(s)
	if !ok {
		return catalog.Language{}, errors.ValidationError("unknown language").WithContext("language", s).Build()
	}
	return catalog.Language{Label: cat.LanguageLabel(code), Code: code}, nil
}

func appDetails(a AppAnswers) resource.AppDetails {
	d := resource.AppDetails{
		MultipageApp:        a.Multipage,
		InteractivePlots:    a.InteractivePlots,
		AssessmentsIncluded: a.Assessments,
		VideosIncluded:      a.Videos,
	}
	if a.Multipage {
		d.NumPages = a.Pages
	}
	if a.InteractivePlots {
		d.NumInteractivePlots = a.NumInteractivePlots
	}
	if a.Assessments {
		d.NumAssessmentQuestions = a.NumQuestions
	}
	if a.Videos {
		d.NumVideos = a.NumVideos
	}
	return d
}

func figureType(t string) string {
	t = strings.TrimSpace(t)
	if strings.EqualFold(t, "(not specified)") {
		return ""
	}
	return t
}

func head(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
