package model

import (
	"strings"
)

// Document is the resume aggregate edited by the wizard.
type Document struct {
	PersonalInfo       PersonalInfo   `json:"personalInfo"`
	Summary            string         `json:"summary"`
	Experience         []Experience   `json:"experience"`
	Education          []Education    `json:"education"`
	Skills             []string       `json:"skills"`
	AdditionalSections map[string]any `json:"additionalSections"`
}

// PersonalInfo holds the contact block.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
}

// Experience is one job entry. When Current is set, EndDate is ignored.
type Experience struct {
	ID          string `json:"id"`
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Education is one degree entry.
type Education struct {
	ID             string `json:"id"`
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	Location       string `json:"location"`
	GraduationDate string `json:"graduationDate"`
	GPA            string `json:"gpa,omitempty"`
}

// PresentLabel replaces the end date of a current position.
const PresentLabel = "Present"

// EndLabel returns the display end date.
func (e Experience) EndLabel() string {
	if e.Current {
		return PresentLabel
	}
	return strings.TrimSpace(e.EndDate)
}

// DateRange formats "start - end", dropping whichever side is empty.
func (e Experience) DateRange() string {
	start := strings.TrimSpace(e.StartDate)
	end := e.EndLabel()
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return end
	case end == "":
		return start
	default:
		return start + " - " + end
	}
}

// HasContent reports whether any of name, summary, experience, education or skills is set.
func (d Document) HasContent() bool {
	return strings.TrimSpace(d.PersonalInfo.FullName) != "" ||
		strings.TrimSpace(d.Summary) != "" ||
		len(d.Experience) > 0 ||
		len(d.Education) > 0 ||
		hasSkill(d.Skills)
}

func hasSkill(skills []string) bool {
	for _, s := range skills {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or maps with d.
func (d Document) Clone() Document {
	out := d
	if d.Experience != nil {
		out.Experience = append([]Experience(nil), d.Experience...)
	}
	if d.Education != nil {
		out.Education = append([]Education(nil), d.Education...)
	}
	if d.Skills != nil {
		out.Skills = append([]string(nil), d.Skills...)
	}
	out.AdditionalSections = cloneMap(d.AdditionalSections)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
