package templates

import (
	"errors"
	"strings"

	"resumepro/resume/model"
)

// Layout selects the preview arrangement.
type Layout string

const (
	LayoutOneColumn Layout = "1-column"
	LayoutTwoColumn Layout = "2-column"
)

// Photo says whether the template reserves space for a photo.
type Photo string

const (
	PhotoWith    Photo = "with"
	PhotoWithout Photo = "without"
)

// Style is the visual family of a template.
type Style string

const (
	StyleModern   Style = "modern"
	StyleClassic  Style = "classic"
	StyleCreative Style = "creative"
)

// ErrNotFound is returned for an unknown template id.
var ErrNotFound = errors.New("template not found")

// Descriptor is an immutable catalog entry. Structure pre-populates a new wizard session.
type Descriptor struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Layout         Layout         `json:"layout"`
	Photo          Photo          `json:"photo"`
	Style          Style          `json:"style"`
	PrimaryColor   string         `json:"primaryColor"`
	SecondaryColor string         `json:"secondaryColor"`
	IsRecommended  bool           `json:"isRecommended"`
	Structure      model.Document `json:"structure"`
}

// Clone returns a deep copy.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.Structure = d.Structure.Clone()
	return out
}

// ParseLayout accepts "1-column"/"2-column" in any case; anything else is rejected.
func ParseLayout(s string) (Layout, bool) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case LayoutOneColumn:
		return LayoutOneColumn, true
	case LayoutTwoColumn:
		return LayoutTwoColumn, true
	}
	return "", false
}

// ParseStyle accepts the known styles in any case.
func ParseStyle(s string) (Style, bool) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleModern:
		return StyleModern, true
	case StyleClassic:
		return StyleClassic, true
	case StyleCreative:
		return StyleCreative, true
	}
	return "", false
}

// ParsePhoto accepts "with"/"without" in any case.
func ParsePhoto(s string) (Photo, bool) {
	switch Photo(strings.ToLower(strings.TrimSpace(s))) {
	case PhotoWith:
		return PhotoWith, true
	case PhotoWithout:
		return PhotoWithout, true
	}
	return "", false
}
