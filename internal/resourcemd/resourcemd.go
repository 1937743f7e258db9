// Package resourcemd renders one resource descriptor as a markdown fragment.
package resourcemd

import (
	"fmt"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/catalogbuilder/internal/resource"
)

const (
	defaultValue         = "N/A"
	defaultDescription   = "No description provided."
	defaultURL           = "#"
	defaultPrerequisites = "None specified."
	emptyCell            = "—"
)

// Options control how figure URLs are built.
type Options struct {
	// FigureURLPrefix is the public URL of the resource asset folder.
	FigureURLPrefix string
}

// Format renders d. The fragment always ends with a horizontal rule.
func Format(d *resource.Descriptor, opts Options) string {
	var b strings.Builder

	title := d.Title
	url := or(d.URL, defaultURL)

	fmt.Fprintf(&b, "## %s\n\n", title)

	fmt.Fprintf(&b, "**Type:** %s | **Time:** %s", or(d.ResourceType, defaultValue), or(d.TimeRequired, defaultValue))
	if d.HasReleaseDate() {
		fmt.Fprintf(&b, " | **Released:** %s", d.DateReleased)
	}
	b.WriteString("\n\n")

	if cover, ok := d.Cover(); ok {
		if u := resource.FigureURL(opts.FigureURLPrefix, d.FileStem, cover); u != "" {
			fmt.Fprintf(&b, "![%s](%s)\n\n", title, u)
		}
	}

	fmt.Fprintf(&b, "%s\n\n", or(d.Description, defaultDescription))
	fmt.Fprintf(&b, "[**LAUNCH RESOURCE**](%s)\n\n", url)

	b.WriteString("| Detail | Value |\n| :--- | :--- |\n")
	fmt.Fprintf(&b, "| **URL** | [%s](%s) |\n", url, url)
	fmt.Fprintf(&b, "| **Author(s)** | %s |\n", Authors(d.Authors))
	fmt.Fprintf(&b, "| **Keywords** | %s |\n", list(d.Keywords))
	fmt.Fprintf(&b, "| **Fit For** | %s |\n", list(d.FitFor))
	fmt.Fprintf(&b, "| **Prerequisites** | %s |\n", or(d.Prerequisites, defaultPrerequisites))
	if len(d.References) > 0 {
		fmt.Fprintf(&b, "| **References** | %s |\n", strings.Join(d.References, "<br>"))
	}

	if d.IsApp() {
		writeAppDetails(&b, d.App)
	}

	if others := d.OtherFigures(); len(others) > 0 {
		b.WriteString("\n### Images\n\n")
		for _, fig := range others {
			u := resource.FigureURL(opts.FigureURLPrefix, d.FileStem, fig)
			if u == "" {
				continue
			}
			alt := fig.Caption
			if alt == "" {
				alt = fmt.Sprintf("Image %d for %s", fig.ID, title)
			}
			fmt.Fprintf(&b, "![%s](%s)\n\n", alt, u)

			var parts []string
			if fig.Caption != "" {
				parts = append(parts, fig.Caption)
			}
			if fig.Type != "" {
				parts = append(parts, "("+fig.Type+")")
			}
			if len(parts) > 0 {
				fmt.Fprintf(&b, "*%s*\n\n", strings.Join(parts, " "))
			}
		}
	}

	b.WriteString("\n---\n\n")
	return b.String()
}

// Authors renders "Name (Affiliation); …", or N/A when there are none.
func Authors(authors []resource.Author) string {
	chunks := make([]string, 0, len(authors))
	for _, a := range authors {
		switch {
		case a.Name != "" && a.Affiliation != "":
			chunks = append(chunks, a.Name+" ("+a.Affiliation+")")
		case a.Name != "":
			chunks = append(chunks, a.Name)
		}
	}
	if len(chunks) == 0 {
		return defaultValue
	}
	return strings.Join(chunks, "; ")
}

func writeAppDetails(b *strings.Builder, app resource.AppDetails) {
	b.WriteString("\n### Streamlit app details\n\n")
	b.WriteString("| Detail | Value |\n| :--- | :--- |\n")
	row := func(label string, on bool, countLabel string, n int) {
		fmt.Fprintf(b, "| %s | %s |\n", label, yesNo(on))
		fmt.Fprintf(b, "| %s | %s |\n", countLabel, counter(on, n))
	}
	row("Multipage app", app.MultipageApp, "Number of pages", app.NumPages)
	row("Interactive plots", app.InteractivePlots, "Number of interactive plots", app.NumInteractivePlots)
	row("Assessments included", app.AssessmentsIncluded, "Number of assessment questions", app.NumAssessmentQuestions)
	row("Videos included", app.VideosIncluded, "Number of videos", app.NumVideos)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func counter(on bool, n int) string {
	if !on || n <= 0 {
		return emptyCell
	}
	return strconv.Itoa(n)
}

func list(items []string) string {
	if len(items) == 0 {
		return emptyCell
	}
	return strings.Join(items, ", ")
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
