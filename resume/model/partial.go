package model

// PartialDocument carries a subset of top-level Document keys. A nil field leaves the
// aggregate untouched; a non-nil field replaces that key wholesale.
type PartialDocument struct {
	PersonalInfo       *PersonalInfo  `json:"personalInfo,omitempty"`
	Summary            *string        `json:"summary,omitempty"`
	Experience         *[]Experience  `json:"experience,omitempty"`
	Education          *[]Education   `json:"education,omitempty"`
	Skills             *[]string      `json:"skills,omitempty"`
	AdditionalSections map[string]any `json:"additionalSections,omitempty"`
}

// Top-level document keys.
const (
	KeyPersonalInfo       = "personalInfo"
	KeySummary            = "summary"
	KeyExperience         = "experience"
	KeyEducation          = "education"
	KeySkills             = "skills"
	KeyAdditionalSections = "additionalSections"
)

// Keys lists the top-level keys the partial touches, in document order.
func (p PartialDocument) Keys() []string {
	var keys []string
	if p.PersonalInfo != nil {
		keys = append(keys, KeyPersonalInfo)
	}
	if p.Summary != nil {
		keys = append(keys, KeySummary)
	}
	if p.Experience != nil {
		keys = append(keys, KeyExperience)
	}
	if p.Education != nil {
		keys = append(keys, KeyEducation)
	}
	if p.Skills != nil {
		keys = append(keys, KeySkills)
	}
	if p.AdditionalSections != nil {
		keys = append(keys, KeyAdditionalSections)
	}
	return keys
}

// IsEmpty reports whether the partial touches no key.
func (p PartialDocument) IsEmpty() bool {
	return len(p.Keys()) == 0
}

// Merge applies p onto d, last writer wins per top-level key. d is not modified.
func Merge(d Document, p PartialDocument) Document {
	out := d.Clone()
	if p.PersonalInfo != nil {
		out.PersonalInfo = *p.PersonalInfo
	}
	if p.Summary != nil {
		out.Summary = *p.Summary
	}
	if p.Experience != nil {
		out.Experience = append([]Experience{}, (*p.Experience)...)
	}
	if p.Education != nil {
		out.Education = append([]Education{}, (*p.Education)...)
	}
	if p.Skills != nil {
		out.Skills = append([]string{}, (*p.Skills)...)
	}
	if p.AdditionalSections != nil {
		out.AdditionalSections = cloneMap(p.AdditionalSections)
	}
	return out
}
