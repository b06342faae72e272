package model

import (
	"strings"

	"github.com/google/uuid"
)

// Normalize returns d with unique entry ids, deduplicated skills and non-nil lists.
func Normalize(d Document) Document {
	out := d.Clone()
	out.Experience = NormalizeExperience(out.Experience)
	out.Education = NormalizeEducation(out.Education)
	out.Skills = DedupeSkills(out.Skills)
	return out
}

// NormalizeExperience assigns a fresh id to entries whose id is empty or already used.
func NormalizeExperience(entries []Experience) []Experience {
	out := make([]Experience, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		e.ID = uniqueID(strings.TrimSpace(e.ID), seen)
		out[i] = e
	}
	return out
}

// NormalizeEducation assigns a fresh id to entries whose id is empty or already used.
func NormalizeEducation(entries []Education) []Education {
	out := make([]Education, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		e.ID = uniqueID(strings.TrimSpace(e.ID), seen)
		out[i] = e
	}
	return out
}

func uniqueID(id string, seen map[string]struct{}) string {
	if _, dup := seen[id]; id == "" || dup {
		id = uuid.NewString()
	}
	seen[id] = struct{}{}
	return id
}

// DedupeSkills trims skills, drops empties and keeps the first spelling of
// case-insensitive duplicates, preserving insertion order.
func DedupeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
