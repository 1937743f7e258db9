// Package hierarchy derives content tree locations from a page's category codes.
//
// The same Build call is used by the directory bootstrap, the placeholder step
// and the page renderer so that all three agree on every path.
package hierarchy

import (
	"errors"
	"path/filepath"

	"git.home.luguber.info/inful/catalogbuilder/internal/slug"
)

// Extension is appended to the last segment to form the content file name.
const Extension = ".md"

// ErrNoCategory is returned when a row has no usable category code.
var ErrNoCategory = errors.New("hierarchy: row has no category code")

// Level is one hierarchy level: a formatted code plus its display name.
type Level struct {
	Code string
	Name string
}

// Levels holds the three hierarchy levels of a page.
type Levels struct {
	Category       Level
	Subcategory    Level
	SubSubcategory Level
}

// NewLevels formats raw spreadsheet codes and pairs them with their names.
func NewLevels(catCode, category, subCode, subcategory, subSubCode, subsubcategory string) Levels {
	return Levels{
		Category:       Level{Code: FormatCode(catCode), Name: category},
		Subcategory:    Level{Code: FormatCode(subCode), Name: subcategory},
		SubSubcategory: Level{Code: FormatCode(subSubCode), Name: subsubcategory},
	}
}

// Path is an ordered, non-empty list of folder segments.
type Path struct {
	segments []string
}

// Build computes the folder segments for levels.
//
// The category segment is always present. The subcategory segment is present
// when its code is not NotApplicable. The sub-subcategory segment additionally
// requires the subcategory segment to be present.
func Build(levels Levels) (Path, error) {
	if levels.Category.Code == "" || levels.Category.Code == NotApplicable {
		return Path{}, ErrNoCategory
	}
	segs := []string{segment(levels.Category)}
	if applies(levels.Subcategory) {
		segs = append(segs, segment(levels.Subcategory))
		if applies(levels.SubSubcategory) {
			segs = append(segs, segment(levels.SubSubcategory))
		}
	}
	return Path{segments: segs}, nil
}

func applies(l Level) bool {
	return l.Code != "" && l.Code != NotApplicable
}

func segment(l Level) string {
	return l.Code + "_" + slug.Folder(l.Name)
}

// Segments returns a copy of the folder segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// IsZero reports whether p was not produced by a successful Build.
func (p Path) IsZero() bool { return len(p.segments) == 0 }

// Dir returns the folder under root.
func (p Path) Dir(root string) string {
	return filepath.Join(append([]string{root}, p.segments...)...)
}

// File returns the content file under root: the folder plus the last segment's name.
func (p Path) File(root string) string {
	if p.IsZero() {
		return ""
	}
	return filepath.Join(p.Dir(root), p.segments[len(p.segments)-1]+Extension)
}

// Ancestors returns every directory from root/<first segment> down to Dir(root).
func (p Path) Ancestors(root string) []string {
	out := make([]string, 0, len(p.segments))
	cur := root
	for _, s := range p.segments {
		cur = filepath.Join(cur, s)
		out = append(out, cur)
	}
	return out
}

// String returns the slash separated relative folder.
func (p Path) String() string {
	return filepath.ToSlash(p.Dir(""))
}
