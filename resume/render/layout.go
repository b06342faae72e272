package render

import (
	"strings"

	"resumepro/resume/model"
	"resumepro/resume/templates"
)

// SectionKind names a preview block.
type SectionKind string

const (
	SectionContact    SectionKind = "contact"
	SectionSummary    SectionKind = "summary"
	SectionExperience SectionKind = "experience"
	SectionEducation  SectionKind = "education"
	SectionSkills     SectionKind = "skills"
)

// Layout is the renderer output: a template-independent description of what goes where.
type Layout struct {
	Variant        templates.Layout `json:"variant"`
	Placeholder    bool             `json:"placeholder"`
	Message        string           `json:"message,omitempty"`
	PrimaryColor   string           `json:"primaryColor"`
	SecondaryColor string           `json:"secondaryColor"`
	Name           string           `json:"name,omitempty"`
	Contact        []string         `json:"contact,omitempty"`
	Sidebar        []Section        `json:"sidebar,omitempty"`
	Main           []Section        `json:"main,omitempty"`
}

// Section is one titled block of the preview.
type Section struct {
	Kind  SectionKind `json:"kind"`
	Title string      `json:"title"`
	Text  string      `json:"text,omitempty"`
	Items []Item      `json:"items,omitempty"`
}

// Item is one entry inside a section.
type Item struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Meta     string `json:"meta,omitempty"`
	Body     string `json:"body,omitempty"`
}

// IsTwoColumn reports whether the layout uses the sidebar arrangement.
func (l Layout) IsTwoColumn() bool {
	return l.Variant == templates.LayoutTwoColumn
}

// BuildLayout maps a document and optional template to a layout. It only reads
// tpl.Layout and the palette; a nil template means single column.
func BuildLayout(doc model.Document, tpl *templates.Descriptor) Layout {
	out := Layout{
		Variant:        templates.LayoutOneColumn,
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
	}
	if tpl != nil {
		if tpl.Layout == templates.LayoutTwoColumn {
			out.Variant = templates.LayoutTwoColumn
		}
		if c := strings.TrimSpace(tpl.PrimaryColor); c != "" {
			out.PrimaryColor = c
		}
		if c := strings.TrimSpace(tpl.SecondaryColor); c != "" {
			out.SecondaryColor = c
		}
	}

	if !doc.HasContent() {
		out.Placeholder = true
		out.Message = PlaceholderMessage
		return out
	}

	out.Name = strings.TrimSpace(doc.PersonalInfo.FullName)
	contact := contactLines(doc.PersonalInfo)

	summary, hasSummary := summarySection(doc.Summary)
	experience, hasExperience := experienceSection(doc.Experience)
	education, hasEducation := educationSection(doc.Education)
	skills, hasSkills := skillsSection(doc.Skills)

	if out.IsTwoColumn() {
		if len(contact) > 0 {
			items := make([]Item, len(contact))
			for i, line := range contact {
				items[i] = Item{Title: line}
			}
			out.Sidebar = append(out.Sidebar, Section{Kind: SectionContact, Title: "Contact", Items: items})
		}
		appendIf(&out.Sidebar, skills, hasSkills)
		appendIf(&out.Sidebar, education, hasEducation)
		appendIf(&out.Main, summary, hasSummary)
		appendIf(&out.Main, experience, hasExperience)
		return out
	}

	out.Contact = contact
	appendIf(&out.Main, summary, hasSummary)
	appendIf(&out.Main, experience, hasExperience)
	appendIf(&out.Main, education, hasEducation)
	appendIf(&out.Main, skills, hasSkills)
	return out
}

func appendIf(dst *[]Section, s Section, ok bool) {
	if ok {
		*dst = append(*dst, s)
	}
}

func contactLines(p model.PersonalInfo) []string {
	var lines []string
	for _, v := range []string{p.Email, p.Phone, p.Location, p.LinkedIn, p.Website} {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func summarySection(summary string) (Section, bool) {
	text := strings.TrimSpace(summary)
	return Section{Kind: SectionSummary, Title: "Professional Summary", Text: text}, text != ""
}

func experienceSection(entries []model.Experience) (Section, bool) {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, Item{
			Title:    strings.TrimSpace(e.JobTitle),
			Subtitle: joinNonEmpty(" · ", e.Company, e.Location),
			Meta:     e.DateRange(),
			Body:     strings.TrimSpace(e.Description),
		})
	}
	return Section{Kind: SectionExperience, Title: "Experience", Items: items}, len(items) > 0
}

func educationSection(entries []model.Education) (Section, bool) {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		meta := strings.TrimSpace(e.GraduationDate)
		if gpa := strings.TrimSpace(e.GPA); gpa != "" {
			meta = joinNonEmpty(" · ", meta, "GPA "+gpa)
		}
		items = append(items, Item{
			Title:    strings.TrimSpace(e.Degree),
			Subtitle: joinNonEmpty(" · ", e.Institution, e.Location),
			Meta:     meta,
		})
	}
	return Section{Kind: SectionEducation, Title: "Education", Items: items}, len(items) > 0
}

func skillsSection(skills []string) (Section, bool) {
	items := make([]Item, 0, len(skills))
	for _, s := range skills {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			items = append(items, Item{Title: trimmed})
		}
	}
	return Section{Kind: SectionSkills, Title: "Skills", Items: items}, len(items) > 0
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, sep)
}
