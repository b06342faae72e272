package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumepro/internal/shared/util"
)

// SavedResume is the payload of a finalized resume row.
type SavedResume struct {
	Title      string   `json:"title"`
	TemplateID string   `json:"templateId"`
	Document   Document `json:"document"`
}

// TitleFor derives a display title from the document owner.
func TitleFor(d Document) string {
	if name := strings.TrimSpace(d.PersonalInfo.FullName); name != "" {
		return name + " Resume"
	}
	return "Untitled Resume"
}

// ArtifactName is the download file name for d.
func ArtifactName(d Document) string {
	if slug := util.Slugify(d.PersonalInfo.FullName); slug != "" {
		return slug + "-resume.json"
	}
	return "resume.json"
}

// DecodeSaved parses a stored row payload and validates the embedded document.
func DecodeSaved(data []byte) (SavedResume, error) {
	var envelope struct {
		Title      string          `json:"title"`
		TemplateID string          `json:"templateId"`
		Document   json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return SavedResume{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	doc, err := DecodeArtifact(envelope.Document)
	if err != nil {
		return SavedResume{}, err
	}
	return SavedResume{Title: envelope.Title, TemplateID: envelope.TemplateID, Document: doc}, nil
}
