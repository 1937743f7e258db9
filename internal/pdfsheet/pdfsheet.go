// Package pdfsheet renders the printable resource description sheet that
// accompanies a submission.
package pdfsheet

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"git.home.luguber.info/inful/catalogbuilder/internal/resource"
	"git.home.luguber.info/inful/catalogbuilder/internal/submission"
)

const (
	pageW        = 210.0
	pageH        = 297.0
	margin       = 20.0
	topMargin    = 25.0
	bottomMargin = 25.0
	lineH        = 5.0
	labelW       = 50.0
	maxFigW      = 160.0
	maxFigH      = 90.0
	noValue      = "—"
)

// Options configure the sheet's cover page and running header.
type Options struct {
	ProjectTitle    string
	ProjectSubtitle string
	Logo            string    // optional PNG or JPEG shown on the cover
	CreatedAt       time.Time // zero means the time of rendering
}

// Sheet is the content of one description sheet.
type Sheet struct {
	Descriptor *resource.Descriptor
	Language   string
	Figures    []string // image files, parallel to Descriptor.Figures
}

// Renderer writes description sheets as A4 PDFs.
type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// WriteSheet renders a submission's sheet.
func (r *Renderer) WriteSheet(w io.Writer, s *submission.Submission) error {
	return r.Render(w, Sheet{Descriptor: s.Descriptor, Language: s.Language.Label, Figures: s.FigureFiles})
}

// Render writes the sheet to w. Figures that cannot be decoded are listed by
// caption only.
func (r *Renderer) Render(w io.Writer, sh Sheet) error {
	if sh.Descriptor == nil {
		return fmt.Errorf("sheet has no descriptor")
	}
	d := sh.Descriptor

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	p := &page{pdf: pdf, tr: tr}

	pdf.SetMargins(margin, topMargin, margin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.SetTitle(d.Title, true)
	pdf.SetSubject("Resource description sheet", true)
	pdf.SetCreator("catalogbuilder", true)
	if !r.opts.CreatedAt.IsZero() {
		pdf.SetCreationDate(r.opts.CreatedAt)
	}

	header := strings.TrimSpace(strings.Join(nonEmpty(r.opts.ProjectTitle, r.opts.ProjectSubtitle), " - "))
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo()%2 != 0 || header == "" {
			return
		}
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetY(10)
		pdf.CellFormat(0, lineH, tr(header), "", 0, "C", false, 0, "")
		pdf.SetLineWidth(0.2)
		pdf.Line(margin, 16, pageW-margin, 16)
		pdf.SetY(topMargin)
	})
	pdf.SetFooterFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		pdf.SetLineWidth(0.2)
		pdf.Line(margin, pageH-18, pageW-margin, pageH-18)
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, lineH, strconv.Itoa(pdf.PageNo()-1), "", 0, "C", false, 0, "")
	})

	r.cover(p)
	pdf.AddPage()
	titleBlock(p, d, sh.Language, header)
	basics(p, d)
	overview(p, d)
	technical(p, d)
	educationalFit(p, d)
	people(p, d)
	figures(p, d, sh.Figures)

	return pdf.Output(w)
}

type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (r *Renderer) cover(p *page) {
	pdf := p.pdf
	pdf.AddPage()
	pdf.SetY(80)
	pdf.SetFont("Helvetica", "B", 26)
	pdf.MultiCell(0, 12, p.tr(r.opts.ProjectTitle), "", "C", false)
	if r.opts.ProjectSubtitle != "" {
		pdf.SetFont("Helvetica", "", 15)
		pdf.MultiCell(0, 9, p.tr(r.opts.ProjectSubtitle), "", "C", false)
	}
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 15)
	pdf.MultiCell(0, 9, p.tr("Resource description sheet"), "", "C", false)

	if r.opts.Logo == "" {
		return
	}
	kind, cfg, ok := imageHeader(r.opts.Logo)
	if !ok {
		return
	}
	w, h := scaleInto(cfg, 40, 40)
	pdf.Ln(12)
	pdf.ImageOptions(r.opts.Logo, (pageW-w)/2, pdf.GetY(), w, h, false,
		fpdf.ImageOptions{ImageType: kind}, 0, "")
}

func titleBlock(p *page, d *resource.Descriptor, language, project string) {
	pdf := p.pdf
	if project != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, lineH, p.tr(project), "", "L", false)
		pdf.Ln(2)
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, p.tr(orDefault(d.Title, "Untitled resource")), "", "L", false)
	pdf.Ln(1)
	p.labelled("Topic", orDefault(d.Topic, noValue))
	p.labelled("Language", orDefault(language, noValue))
	if d.ItemID != "" && !strings.Contains(strings.ToUpper(d.ItemID), "TO_BE_FILLED") {
		p.labelled("Item ID", d.ItemID)
	}
	pdf.Ln(4)
}

func basics(p *page, d *resource.Descriptor) {
	p.section("1. Basic information")
	p.row("Resource type", d.ResourceType)
	p.row("URL", d.URL)
	p.row("Date released", orDefault(d.DateReleased, resource.Placeholder))
	p.row("Time required", d.TimeRequired)
	p.pdf.Ln(3)
}

func overview(p *page, d *resource.Descriptor) {
	p.section("2. Pedagogical overview")
	if d.Description != "" {
		p.pdf.SetFont("Helvetica", "B", 10)
		p.pdf.MultiCell(0, lineH, p.tr("Short description"), "", "L", false)
		p.pdf.SetFont("Helvetica", "", 10)
		p.pdf.MultiCell(0, lineH, p.tr(d.Description), "", "L", false)
		p.pdf.Ln(2)
	}
	p.labelled("Keywords", joinOr(d.Keywords, ", "))
	p.labelled("Best suited for", joinOr(d.FitFor, ", "))
	p.pdf.Ln(3)
}

func technical(p *page, d *resource.Descriptor) {
	p.section("3. Technical details")
	a := d.App
	rows := 0
	if a.MultipageApp {
		p.row("Multipage app", fmt.Sprintf("approximately %s page(s)", amount(a.NumPages, "unknown")))
		rows++
	}
	if a.InteractivePlots {
		p.row("Interactive plots", fmt.Sprintf("%s interactive plot(s)", amount(a.NumInteractivePlots, "unknown number of")))
		rows++
	}
	if a.AssessmentsIncluded {
		p.row("Assessments", fmt.Sprintf("%s question(s)", amount(a.NumAssessmentQuestions, "unknown number of")))
		rows++
	}
	if a.VideosIncluded {
		p.row("Videos", fmt.Sprintf("%s video(s)", amount(a.NumVideos, "unknown number of")))
		rows++
	}
	if rows == 0 {
		p.row("No additional technical features reported", noValue)
	}
	p.pdf.Ln(3)
}

func educationalFit(p *page, d *resource.Descriptor) {
	p.section("4. Educational fit")
	p.row("Time required", d.TimeRequired)
	p.row("Prerequisites", d.Prerequisites)
	p.row("Best suited for", joinOr(d.FitFor, ", "))
	p.pdf.Ln(3)
}

func people(p *page, d *resource.Descriptor) {
	pdf := p.pdf
	p.section("5. Authors & references")
	if len(d.Authors) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, lineH, p.tr("No authors provided."), "", "L", false)
	} else {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, lineH, p.tr("Authors"), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		for _, a := range d.Authors {
			line := a.Name
			if a.Affiliation != "" {
				line += " (" + a.Affiliation + ")"
			}
			pdf.MultiCell(0, lineH, p.tr("• "+line), "", "L", false)
		}
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.MultiCell(0, lineH, p.tr("References"), "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	if len(d.References) == 0 {
		pdf.MultiCell(0, lineH, p.tr("No references provided."), "", "L", false)
	}
	for _, ref := range d.References {
		pdf.MultiCell(0, lineH, p.tr("– "+ref), "", "L", false)
	}
	pdf.Ln(4)
}

func figures(p *page, d *resource.Descriptor, files []string) {
	if len(files) == 0 {
		return
	}
	pdf := p.pdf
	p.section("6. Figures and illustrations")
	for i, file := range files {
		var meta resource.Figure
		if i < len(d.Figures) {
			meta = d.Figures[i]
		}
		caption := Caption(i+1, meta)

		kind, cfg, ok := imageHeader(file)
		if ok {
			w, h := scaleInto(cfg, maxFigW, maxFigH)
			if pdf.GetY()+h+2*lineH > pageH-bottomMargin {
				pdf.AddPage()
			}
			y := pdf.GetY()
			pdf.ImageOptions(file, (pageW-w)/2, y, w, h, false, fpdf.ImageOptions{ImageType: kind}, 0, "")
			pdf.SetY(y + h + 2)
		}
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, lineH, p.tr(caption), "", "C", false)
		pdf.Ln(5)
	}
}

// Caption is the printed caption of the figure at 1-based position n.
func Caption(n int, f resource.Figure) string {
	text := f.Caption
	if text == "" {
		text = fmt.Sprintf("Uploaded image %d", n)
	}
	out := fmt.Sprintf("Figure %d. %s", n, text)
	if f.Type != "" {
		out += " (" + f.Type + ")"
	}
	return out
}

func (p *page) section(title string) {
	if p.pdf.GetY()+4*lineH > pageH-bottomMargin {
		p.pdf.AddPage()
	}
	p.pdf.SetFont("Helvetica", "B", 12)
	p.pdf.MultiCell(0, 7, p.tr(title), "", "L", false)
	p.pdf.Ln(1)
}

func (p *page) labelled(label, value string) {
	pdf := p.pdf
	pdf.SetFont("Helvetica", "B", 10)
	lw := pdf.GetStringWidth(p.tr(label+": ")) + 1
	pdf.CellFormat(lw, lineH, p.tr(label+":"), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, lineH, p.tr(value), "", "L", false)
}

// row draws a two column table row; the label cell grows with the value.
func (p *page) row(label, value string) {
	pdf := p.pdf
	value = orDefault(value, noValue)
	valueW := pageW - 2*margin - labelW

	pdf.SetFont("Helvetica", "", 9)
	text := p.tr(value)
	est := math.Ceil(pdf.GetStringWidth(text)/(valueW-2)) + float64(strings.Count(text, "\n"))
	if est < 1 {
		est = 1
	}
	if pdf.GetY()+est*lineH > pageH-bottomMargin {
		pdf.AddPage()
	}

	x, y := margin, pdf.GetY()
	pdf.SetXY(x+labelW, y)
	pdf.MultiCell(valueW, lineH, text, "1", "L", false)
	h := pdf.GetY() - y
	if h <= 0 {
		// value broke across pages; no label cell
		return
	}
	pdf.SetXY(x, y)
	pdf.SetFillColor(245, 245, 245)
	pdf.CellFormat(labelW, h, p.tr(label), "1", 0, "L", true, 0, "")
	pdf.SetXY(x, y+h)
}

// imageHeader decodes only the image header so broken files never reach the
// PDF writer.
func imageHeader(path string) (string, image.Config, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", image.Config{}, false
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return "", image.Config{}, false
	}
	switch format {
	case "png":
		return "PNG", cfg, true
	case "jpeg":
		return "JPG", cfg, true
	default:
		return "", image.Config{}, false
	}
}

// scaleInto scales cfg into a maxW x maxH box (mm), preserving the aspect ratio.
func scaleInto(cfg image.Config, maxW, maxH float64) (float64, float64) {
	ratio := float64(cfg.Height) / float64(cfg.Width)
	w := maxW
	h := w * ratio
	if h > maxH {
		h = maxH
		w = h / ratio
	}
	return w, h
}

func amount(n int, unknown string) string {
	if n <= 0 {
		return unknown
	}
	return strconv.Itoa(n)
}

func joinOr(items []string, sep string) string {
	if len(items) == 0 {
		return noValue
	}
	return strings.Join(items, sep)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonEmpty(items ...string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
