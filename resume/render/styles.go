package render

// Colors used when no template is selected.
const (
	DefaultPrimaryColor   = "#1f2937"
	DefaultSecondaryColor = "#4b5563"
)

// Font sizes in pixels for the preview markup.
const (
	NameSize    = 28
	HeadingSize = 16
	BodySize    = 13
)

// PlaceholderMessage is shown instead of an empty resume.
const PlaceholderMessage = "Your resume preview will appear here"
