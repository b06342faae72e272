package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed html/*.tmpl
var htmlFiles embed.FS

var previewTemplate = template.Must(template.New("preview.html.tmpl").Funcs(template.FuncMap{
	"nameSize":    func() int { return NameSize },
	"headingSize": func() int { return HeadingSize },
	"bodySize":    func() int { return BodySize },
}).ParseFS(htmlFiles, "html/preview.html.tmpl"))

// RenderHTML renders a layout into a standalone HTML document. All text is escaped.
func RenderHTML(layout Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, layout); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return buf.Bytes(), nil
}
