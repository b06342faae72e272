// Package extract turns uploaded resume files into plain text for scoring.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported upload content types.
const (
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePlain = "text/plain"
)

// maxPDFPages bounds extraction work for oversized uploads.
const maxPDFPages = 20

var (
	// ErrUnsupported is returned for content types without an extractor.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrEmpty is returned when a file yields no text.
	ErrEmpty = errors.New("no text found in file")
)

var extractors = map[string]func([]byte) (string, error){
	MimePDF:   pdfText,
	MimeDOCX:  docxText,
	MimePlain: plainText,
}

// Supported reports whether a content type, or the file extension when the
// type is generic, has an extractor.
func Supported(mimeType, fileName string) bool {
	_, ok := extractors[detect(mimeType, fileName, nil)]
	return ok
}

// FromBytes extracts trimmed plain text from an uploaded file. An empty
// mimeType is sniffed from data.
func FromBytes(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	kind := detect(mimeType, fileName, data)
	fn, ok := extractors[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, kind)
	}
	text, err := fn(data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", kind, err)
	}
	if text = strings.TrimSpace(text); text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// detect resolves the extractor key. Generic types defer to the extension and
// zip archives count as DOCX only when they hold word/document.xml. A nil data
// trusts the extension.
func detect(mimeType, fileName string, data []byte) string {
	base, _, _ := strings.Cut(mimeType, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	if _, ok := extractors[base]; ok {
		return base
	}

	byExt := map[string]string{".pdf": MimePDF, ".docx": MimeDOCX, ".txt": MimePlain}
	ext := strings.ToLower(filepath.Ext(fileName))
	switch base {
	case "", "application/octet-stream":
		if kind, ok := byExt[ext]; ok {
			return kind
		}
	case "application/zip":
		if data == nil && ext == ".docx" {
			return MimeDOCX
		}
		if hasWordDocument(data) {
			return MimeDOCX
		}
	}
	return base
}

func hasWordDocument(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, `\`, "/") == "word/document.xml" {
			return true
		}
	}
	return false
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text file is not utf-8", ErrUnsupported)
	}
	return string(data), nil
}

// pdfText concatenates the text of the first maxPDFPages pages. Pages that
// fail to decode are skipped.
func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	pages := min(r.NumPage(), maxPDFPages)
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

func docxText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return paragraphs(doc.Editable().GetContent()), nil
}

// paragraphs keeps the character data of WordprocessingML and breaks lines at
// paragraph and explicit break ends. Malformed XML is returned unchanged.
func paragraphs(body string) string {
	dec := xml.NewDecoder(strings.NewReader(body))
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return body
		}
		switch t := tok.(type) {
		case xml.CharData:
			out.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && out.Len() > 0 {
				out.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(out.String())
}
