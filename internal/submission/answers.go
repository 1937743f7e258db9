// Package submission turns a contributor's answers into a resource descriptor
// bundle: the descriptor YAML, a printable sheet and a zip with the figures.
package submission

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
)

// MaxAuthors is the largest number of authors a submission may list.
const MaxAuthors = 10

// StreamlitType is the resource type that carries app details.
const StreamlitType = "Streamlit app"

// Answers mirrors the contribution form.
type Answers struct {
	Language string   `yaml:"language"` // label or code
	Location Location `yaml:"location"`

	Title string     `yaml:"title"`
	Type  string     `yaml:"type"`
	App   AppAnswers `yaml:"app"`

	Authors []AuthorAnswer `yaml:"authors"`

	URL            string   `yaml:"url"`
	TimeRequired   string   `yaml:"time_required"`
	Description    string   `yaml:"description"`
	KeywordsText   string   `yaml:"keywords"` // comma separated
	FitFor         []string `yaml:"fit_for"`
	Prerequisites  string   `yaml:"prerequisites"`
	ReferencesText string   `yaml:"references"` // one per line

	Figures []FigureAnswer `yaml:"figures"`
}

// Location selects where the resource attaches. Existing labels come from the
// catalog; the New* fields propose entries that do not exist yet.
type Location struct {
	Category       string `yaml:"category"`
	Subcategory    string `yaml:"subcategory"`
	SubSubcategory string `yaml:"subsubcategory"`

	NewCategory       string `yaml:"new_category"`
	NewSubcategory    string `yaml:"new_subcategory"`
	NewSubSubcategory string `yaml:"new_subsubcategory"`
}

// AppAnswers are only kept for Streamlit apps.
type AppAnswers struct {
	Multipage           bool `yaml:"multipage"`
	Pages               int  `yaml:"pages"`
	InteractivePlots    bool `yaml:"interactive_plots"`
	NumInteractivePlots int  `yaml:"num_interactive_plots"`
	Assessments         bool `yaml:"assessments"`
	NumQuestions        int  `yaml:"num_questions"`
	Videos              bool `yaml:"videos"`
	NumVideos           int  `yaml:"num_videos"`
}

type AuthorAnswer struct {
	Name        string `yaml:"name"`
	Affiliation string `yaml:"affiliation"`
}

// FigureAnswer points at an image file on disk.
type FigureAnswer struct {
	Path    string `yaml:"path"`
	Type    string `yaml:"type"`
	Caption string `yaml:"caption"`
	IsCover bool   `yaml:"is_cover"`
}

var figureExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// LoadAnswers reads an answers file. Relative figure paths resolve against
// the file's directory.
func LoadAnswers(path string) (*Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InputError("cannot read answers file").WithCause(err).
			WithContext("path", path).Build()
	}
	var a Answers
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid answers file").
			WithContext("path", path).Build()
	}
	base := filepath.Dir(path)
	for i := range a.Figures {
		if p := a.Figures[i].Path; p != "" && !filepath.IsAbs(p) {
			a.Figures[i].Path = filepath.Join(base, p)
		}
	}
	return &a, nil
}

// IsStreamlit reports whether the answers describe a Streamlit app.
func (a *Answers) IsStreamlit() bool {
	return strings.EqualFold(strings.TrimSpace(a.Type), StreamlitType)
}

// Keywords splits the keywords text on commas.
func (a *Answers) Keywords() []string {
	return splitNonEmpty(strings.Split(a.KeywordsText, ","))
}

// References splits the references text into lines.
func (a *Answers) References() []string {
	return splitNonEmpty(strings.Split(strings.ReplaceAll(a.ReferencesText, "\r\n", "\n"), "\n"))
}

// Validate reports every problem with the answers at once.
func (a *Answers) Validate() error {
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	if strings.TrimSpace(a.Title) == "" {
		add("title is required")
	}
	if strings.TrimSpace(a.Type) == "" {
		add("type is required")
	}
	if len(a.Authors) > MaxAuthors {
		add("at most %d authors are allowed, got %d", MaxAuthors, len(a.Authors))
	}
	a.Location.validate(add)

	counters := []struct {
		name string
		n    int
	}{
		{"app.pages", a.App.Pages},
		{"app.num_interactive_plots", a.App.NumInteractivePlots},
		{"app.num_questions", a.App.NumQuestions},
		{"app.num_videos", a.App.NumVideos},
	}
	for _, c := range counters {
		if c.n < 0 {
			add("%s must not be negative", c.name)
		}
	}
	for i, f := range a.Figures {
		if strings.TrimSpace(f.Path) == "" {
			add("figure %d has no path", i+1)
			continue
		}
		if !figureExtensions[strings.ToLower(filepath.Ext(f.Path))] {
			add("figure %d must be a PNG or JPEG image: %s", i+1, f.Path)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.ValidationError("invalid submission answers").
		WithContext("problems", strings.Join(problems, "; ")).Build()
}

func (l Location) validate(add func(string, ...any)) {
	if strings.TrimSpace(l.NewCategory) != "" {
		if strings.TrimSpace(l.NewSubSubcategory) != "" && strings.TrimSpace(l.NewSubcategory) == "" {
			add("location.new_subsubcategory needs location.new_subcategory")
		}
		return
	}
	if strings.TrimSpace(l.Category) == "" {
		add("location.category or location.new_category is required")
		return
	}
	if strings.TrimSpace(l.NewSubcategory) != "" {
		return
	}
	if strings.TrimSpace(l.Subcategory) == "" {
		if strings.TrimSpace(l.SubSubcategory) != "" || strings.TrimSpace(l.NewSubSubcategory) != "" {
			add("a sub-subcategory needs location.subcategory")
		}
		return
	}
	if strings.TrimSpace(l.SubSubcategory) != "" && strings.TrimSpace(l.NewSubSubcategory) != "" {
		add("choose location.subsubcategory or location.new_subsubcategory, not both")
	}
}

func splitNonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
