package submission

import (
	"bytes"
	"strconv"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/catalogbuilder/internal/resource"
)

// DescriptorYAML renders the descriptor with the guidance comments course
// managers rely on when completing a submission.
func (s *Submission) DescriptorYAML() ([]byte, error) {
	d := s.Descriptor
	m := &mapping{node: &yaml.Node{Kind: yaml.MappingNode}}

	m.str("catalog_category", d.CatalogCategory)
	m.str("catalog_subcategory", d.CatalogSubcategory)
	m.str("catalog_subsubcategory", d.CatalogSubsubcategory)

	m.str("item_id", d.ItemID).head("--- RESOURCE IDENTIFICATION AND TOPIC MAPPING ---\n" +
		"item_id: A unique, simple slug for this item (e.g., aquifer_test_1).")
	m.str("topic", d.Topic).line("Must match the title of the parent catalog page.")
	if d.TopicPageID != "" {
		m.str("topic_page_id", d.TopicPageID).line("page_id of the catalog page this resource is listed on.")
	}
	m.str("title", d.Title).line("The full, descriptive name of the resource.")
	m.str("lang_code", d.LangCode)

	m.str("resource_type", d.ResourceType).head("--- TYPE AND ACCESS ---").
		line("Required. Options: Streamlit app, Jupyter Notebook, Video, Dataset, Other.")
	m.str("url", d.URL).line("The direct link to launch the app, notebook on Binder, or video on YouTube.")
	m.str("date_released", d.DateReleased).line("Release date in YYYY-MM-DD format.")

	desc := m.str("description_short", d.Description).head("--- CONTENT AND METADATA ---")
	if d.Description != "" {
		desc.value.Style = yaml.FoldedStyle
	}
	m.list("keywords", d.Keywords, yaml.FlowStyle)
	m.boolean("multipage_app", d.App.MultipageApp)
	m.integer("num_pages", d.App.NumPages)
	m.boolean("interactive_plots", d.App.InteractivePlots)
	m.integer("num_interactive_plots", d.App.NumInteractivePlots)
	m.boolean("assessments_included", d.App.AssessmentsIncluded)
	m.integer("num_assessment_questions", d.App.NumAssessmentQuestions)
	m.boolean("videos_included", d.App.VideosIncluded)
	m.integer("num_videos", d.App.NumVideos)

	m.str("time_required", d.TimeRequired).head("--- EDUCATIONAL FIT ---").
		line("Estimated time for a student to complete the activity (e.g., 30 minutes, 1.5 hours).")
	m.str("prerequisites", d.Prerequisites).
		line("Required prior knowledge (e.g., Darcy's Law, Python basics, basic calculus).")
	m.list("fit_for", d.FitFor, 0)

	m.add("authors", authorsNode(d.Authors)).head("--- AUTHOR AND REFERENCE ---")
	m.list("references", d.References, 0).
		line("List any published papers, DOIs, or source materials related to this resource.")

	m.add("figures", figuresNode(d.Figures)).head(
		"image_url: Optional path to a screenshot for the catalog page " +
			"(e.g., /assets/images/resources/flow_tool_screenshot.png)")

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{m.node}}); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type mapping struct {
	node *yaml.Node
}

type entry struct {
	key, value *yaml.Node
}

func (e entry) head(comment string) entry {
	e.key.HeadComment = comment
	return e
}

func (e entry) line(comment string) entry {
	e.value.LineComment = comment
	return e
}

func (m *mapping) add(key string, value *yaml.Node) entry {
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	m.node.Content = append(m.node.Content, k, value)
	return entry{key: k, value: value}
}

func (m *mapping) str(key, value string) entry {
	return m.add(key, strNode(value))
}

func (m *mapping) boolean(key string, v bool) entry {
	return m.add(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)})
}

func (m *mapping) integer(key string, v int) entry {
	return m.add(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)})
}

func (m *mapping) list(key string, items []string, style yaml.Style) entry {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: style}
	if len(items) == 0 {
		seq.Style = yaml.FlowStyle
	}
	for _, it := range items {
		seq.Content = append(seq.Content, strNode(it))
	}
	return m.add(key, seq)
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func authorsNode(authors []resource.Author) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	if len(authors) == 0 {
		seq.Style = yaml.FlowStyle
	}
	for _, a := range authors {
		am := &mapping{node: &yaml.Node{Kind: yaml.MappingNode}}
		am.str("name", a.Name)
		am.str("affiliation", a.Affiliation)
		seq.Content = append(seq.Content, am.node)
	}
	return seq
}

func figuresNode(figs []resource.Figure) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	if len(figs) == 0 {
		seq.Style = yaml.FlowStyle
	}
	for _, f := range figs {
		fm := &mapping{node: &yaml.Node{Kind: yaml.MappingNode}}
		fm.integer("id", f.ID)
		if f.OriginalFilename != "" {
			fm.str("original_filename", f.OriginalFilename)
		}
		if f.Type != "" {
			fm.str("type", f.Type)
		}
		if f.Caption != "" {
			fm.str("caption", f.Caption)
		}
		if f.IsCover {
			fm.boolean("is_cover", true)
		}
		seq.Content = append(seq.Content, fm.node)
	}
	return seq
}
