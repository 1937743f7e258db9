// Package pages reads the page spreadsheet into typed rows.
package pages

import (
	"strconv"
	"strings"

	"git.home.luguber.info/inful/catalogbuilder/internal/hierarchy"
)

// Column names understood by the reader. Unknown columns are ignored.
const (
	ColPageID         = "page_id"
	ColParentID       = "parent_id"
	ColTitle          = "title"
	ColLayout         = "layout"
	ColNavOrder       = "nav_order"
	ColDisplayOrder   = "display_order"
	ColLangCode       = "lang_code"
	ColHasChildren    = "has_children"
	ColCategory       = "category"
	ColCatCode        = "cat_code"
	ColSubcategory    = "subcategory"
	ColSubCatCode     = "sub_cat_code"
	ColSubSubcategory = "subsubcategory"
	ColSubSubCatCode  = "sub_sub_cat_code"
)

// Row is one spreadsheet line. All cells are kept as trimmed strings; missing
// cells are blank.
type Row struct {
	Line int // 1-based spreadsheet line, header is line 1

	PageID         string
	ParentID       string
	Title          string
	Layout         string
	NavOrder       string
	LangCode       string
	HasChildren    string
	Category       string
	CatCode        string
	Subcategory    string
	SubCatCode     string
	SubSubcategory string
	SubSubCatCode  string
}

// Levels returns the row's hierarchy levels with formatted codes.
func (r Row) Levels() hierarchy.Levels {
	return hierarchy.NewLevels(r.CatCode, r.Category, r.SubCatCode, r.Subcategory, r.SubSubCatCode, r.SubSubcategory)
}

// Nav parses the navigation order. Integral floats such as "3.0" are accepted.
func (r Row) Nav() (int, bool) {
	s := strings.TrimSpace(r.NavOrder)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}

// Children interprets the has_children cell.
func (r Row) Children() bool {
	return ParseBool(r.HasChildren)
}

// ParseBool accepts true, yes, y, 1 and on (case-insensitive); everything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on":
		return true
	default:
		return false
	}
}

// fromRecord maps a header-indexed record onto a Row.
func fromRecord(line int, idx map[string]int, rec []string) Row {
	cell := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	nav := cell(ColNavOrder)
	if _, ok := idx[ColNavOrder]; !ok {
		nav = cell(ColDisplayOrder)
	}
	return Row{
		Line:           line,
		PageID:         cell(ColPageID),
		ParentID:       cell(ColParentID),
		Title:          cell(ColTitle),
		Layout:         cell(ColLayout),
		NavOrder:       nav,
		LangCode:       cell(ColLangCode),
		HasChildren:    cell(ColHasChildren),
		Category:       cell(ColCategory),
		CatCode:        cell(ColCatCode),
		Subcategory:    cell(ColSubcategory),
		SubCatCode:     cell(ColSubCatCode),
		SubSubcategory: cell(ColSubSubcategory),
		SubSubCatCode:  cell(ColSubSubCatCode),
	}
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Table is the loaded spreadsheet plus lookups by page id.
type Table struct {
	Rows []Row

	titles  map[string]string
	parents map[string]string
}

// NewTable indexes rows. When a page id repeats, the last row wins for lookups.
func NewTable(rows []Row) *Table {
	t := &Table{Rows: rows, titles: map[string]string{}, parents: map[string]string{}}
	for _, r := range rows {
		if r.PageID == "" {
			continue
		}
		t.titles[r.PageID] = r.Title
		t.parents[r.PageID] = r.ParentID
	}
	return t
}

// Title returns the title of pageID and whether it is known and non-blank.
func (t *Table) Title(pageID string) (string, bool) {
	title, ok := t.titles[pageID]
	return title, ok && title != ""
}

// Parent returns the parent_id of pageID.
func (t *Table) Parent(pageID string) string {
	return t.parents[pageID]
}
