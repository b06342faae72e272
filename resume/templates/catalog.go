package templates

import "resumepro/resume/model"

// Catalog is a read-only list of descriptors. Every getter returns copies.
type Catalog struct {
	entries []Descriptor
}

// NewCatalog builds a catalog from entries, copying them.
func NewCatalog(entries []Descriptor) *Catalog {
	c := &Catalog{entries: make([]Descriptor, len(entries))}
	for i, e := range entries {
		c.entries[i] = e.Clone()
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return NewCatalog(builtin())
}

// All returns every descriptor in catalog order.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Clone()
	}
	return out
}

// First returns the first catalog entry, the fallback for a missing or bad choice.
func (c *Catalog) First() (Descriptor, bool) {
	if len(c.entries) == 0 {
		return Descriptor{}, false
	}
	return c.entries[0].Clone(), true
}

// Get looks up a descriptor by id.
func (c *Catalog) Get(id string) (Descriptor, error) {
	for _, e := range c.entries {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return Descriptor{}, ErrNotFound
}

// Filter narrows the catalog. Zero-valued fields match everything.
type Filter struct {
	Layout      Layout
	Style       Style
	Photo       Photo
	Recommended *bool
}

// Find returns the descriptors matching f in catalog order.
func (c *Catalog) Find(f Filter) []Descriptor {
	out := []Descriptor{}
	for _, e := range c.entries {
		if f.Layout != "" && e.Layout != f.Layout {
			continue
		}
		if f.Style != "" && e.Style != f.Style {
			continue
		}
		if f.Photo != "" && e.Photo != f.Photo {
			continue
		}
		if f.Recommended != nil && e.IsRecommended != *f.Recommended {
			continue
		}
		out = append(out, e.Clone())
	}
	return out
}

func builtin() []Descriptor {
	starter := model.Document{
		PersonalInfo: model.PersonalInfo{
			FullName: "Your Name",
			Email:    "you@example.com",
			Phone:    "+1 555 0100",
			Location: "City, Country",
		},
		Summary: "A short professional summary highlighting your strengths and goals.",
		Experience: []model.Experience{{
			ID:          "starter-exp-1",
			JobTitle:    "Job Title",
			Company:     "Company",
			Location:    "City",
			StartDate:   "2021-01",
			Current:     true,
			Description: "Describe your impact with measurable results.",
		}},
		Education: []model.Education{{
			ID:             "starter-edu-1",
			Degree:         "Degree",
			Institution:    "Institution",
			Location:       "City",
			GraduationDate: "2020",
		}},
		Skills: []string{"Communication", "Problem Solving", "Teamwork"},
	}
	minimal := model.Document{
		PersonalInfo: model.PersonalInfo{FullName: "Your Name", Email: "you@example.com"},
		Experience:   []model.Experience{},
		Education:    []model.Education{},
		Skills:       []string{},
	}

	return []Descriptor{
		{ID: "modern-professional", Name: "Modern Professional", Layout: LayoutTwoColumn, Photo: PhotoWithout, Style: StyleModern,
			PrimaryColor: "#1e3a8a", SecondaryColor: "#3b82f6", IsRecommended: true, Structure: starter},
		{ID: "classic-elegant", Name: "Classic Elegant", Layout: LayoutOneColumn, Photo: PhotoWithout, Style: StyleClassic,
			PrimaryColor: "#111827", SecondaryColor: "#6b7280", IsRecommended: true, Structure: starter},
		{ID: "creative-portfolio", Name: "Creative Portfolio", Layout: LayoutTwoColumn, Photo: PhotoWith, Style: StyleCreative,
			PrimaryColor: "#7c3aed", SecondaryColor: "#ec4899", Structure: starter},
		{ID: "modern-minimal", Name: "Modern Minimal", Layout: LayoutOneColumn, Photo: PhotoWithout, Style: StyleModern,
			PrimaryColor: "#0f766e", SecondaryColor: "#14b8a6", Structure: minimal},
		{ID: "executive-photo", Name: "Executive", Layout: LayoutOneColumn, Photo: PhotoWith, Style: StyleClassic,
			PrimaryColor: "#7f1d1d", SecondaryColor: "#b91c1c", Structure: starter},
		{ID: "creative-bold", Name: "Creative Bold", Layout: LayoutTwoColumn, Photo: PhotoWithout, Style: StyleCreative,
			PrimaryColor: "#ea580c", SecondaryColor: "#facc15", IsRecommended: true, Structure: minimal},
	}
}
