package model

import (
	"encoding/json"
	"fmt"
)

// EncodeArtifact serializes d as the pretty-printed download format.
func EncodeArtifact(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// DecodeArtifact parses a stored or downloaded document, rejecting anything
// that does not match the resume schema.
func DecodeArtifact(data []byte) (Document, error) {
	if err := ValidateJSON(data); err != nil {
		return Document{}, err
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return d, nil
}
