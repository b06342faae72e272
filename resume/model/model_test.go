package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func sampleDocument() Document {
	return Document{
		PersonalInfo: PersonalInfo{FullName: "Jane Doe", Email: "jane@example.com", LinkedIn: "https://linkedin.com/in/jane"},
		Summary:      "Backend engineer.",
		Experience: []Experience{
			{ID: "e1", JobTitle: "Engineer", Company: "Acme", StartDate: "2020-01", Current: true, EndDate: "2021-01"},
		},
		Education: []Education{
			{ID: "d1", Degree: "BSc", Institution: "State U", GraduationDate: "2019", GPA: "3.8"},
		},
		Skills:             []string{"Go", "SQL"},
		AdditionalSections: map[string]any{"languages": []any{"English", "Spanish"}},
	}
}

func TestMergeIsLastWriterWinsPerKey(t *testing.T) {
	base := Document{Summary: "first"}
	steps := []PartialDocument{
		{PersonalInfo: &PersonalInfo{FullName: "A"}},
		{Summary: strPtr("second")},
		{Skills: &[]string{"Go"}},
		{PersonalInfo: &PersonalInfo{FullName: "B", Email: "b@example.com"}},
	}

	doc := base
	for _, p := range steps {
		doc = Merge(doc, p)
	}

	if doc.PersonalInfo.FullName != "B" || doc.PersonalInfo.Email != "b@example.com" {
		t.Fatalf("expected later personalInfo to win, got %+v", doc.PersonalInfo)
	}
	if doc.Summary != "second" {
		t.Fatalf("expected summary=second, got %q", doc.Summary)
	}
	if !reflect.DeepEqual(doc.Skills, []string{"Go"}) {
		t.Fatalf("unexpected skills %v", doc.Skills)
	}
	if base.Summary != "first" {
		t.Fatalf("merge mutated its input")
	}
}

func TestMergeNilKeysLeaveAggregate(t *testing.T) {
	doc := sampleDocument()
	merged := Merge(doc, PartialDocument{})
	if !reflect.DeepEqual(doc, merged) {
		t.Fatalf("empty partial changed the document")
	}
}

func TestMergeEmptyListClears(t *testing.T) {
	doc := sampleDocument()
	merged := Merge(doc, PartialDocument{Skills: &[]string{}})
	if len(merged.Skills) != 0 {
		t.Fatalf("expected skills cleared, got %v", merged.Skills)
	}
	if len(doc.Skills) != 2 {
		t.Fatalf("input skills mutated")
	}
}

func TestPartialKeys(t *testing.T) {
	p := PartialDocument{Summary: strPtr(""), Education: &[]Education{}}
	if got := p.Keys(); !reflect.DeepEqual(got, []string{KeySummary, KeyEducation}) {
		t.Fatalf("unexpected keys %v", got)
	}
	if (PartialDocument{}).IsEmpty() != true {
		t.Fatalf("expected empty partial")
	}
}

func TestDedupeSkills(t *testing.T) {
	got := DedupeSkills([]string{" Go ", "go", "", "SQL", "GO", "Docker", "sql"})
	want := []string{"Go", "SQL", "Docker"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DedupeSkills = %v, want %v", got, want)
	}
}

func TestNormalizeAssignsUniqueIDs(t *testing.T) {
	doc := Document{
		Experience: []Experience{{ID: "a"}, {ID: "a"}, {ID: ""}},
		Education:  []Education{{ID: ""}, {ID: "x"}},
	}
	out := Normalize(doc)

	seen := map[string]bool{}
	for _, e := range out.Experience {
		if e.ID == "" || seen[e.ID] {
			t.Fatalf("duplicate or empty experience id %q", e.ID)
		}
		seen[e.ID] = true
	}
	if out.Experience[0].ID != "a" {
		t.Fatalf("first occurrence should keep its id, got %q", out.Experience[0].ID)
	}
	if out.Education[1].ID != "x" || out.Education[0].ID == "" {
		t.Fatalf("unexpected education ids %+v", out.Education)
	}
	if out.Skills == nil {
		t.Fatalf("expected non-nil skills after normalize")
	}
}

func TestHasContent(t *testing.T) {
	if (Document{}).HasContent() {
		t.Fatalf("empty document reported content")
	}
	if (Document{PersonalInfo: PersonalInfo{FullName: "   "}}).HasContent() {
		t.Fatalf("whitespace name counted as content")
	}
	if (Document{Skills: []string{"  ", "\t"}}).HasContent() {
		t.Fatalf("blank skills counted as content")
	}
	cases := []Document{
		{PersonalInfo: PersonalInfo{FullName: "A"}},
		{Summary: "s"},
		{Experience: []Experience{{}}},
		{Education: []Education{{}}},
		{Skills: []string{"Go"}},
	}
	for i, d := range cases {
		if !d.HasContent() {
			t.Fatalf("case %d expected content", i)
		}
	}
}

func TestExperienceDateRange(t *testing.T) {
	tests := []struct {
		exp  Experience
		want string
	}{
		{Experience{StartDate: "2020", EndDate: "2022"}, "2020 - 2022"},
		{Experience{StartDate: "2020", EndDate: "2022", Current: true}, "2020 - Present"},
		{Experience{EndDate: "2022"}, "2022"},
		{Experience{StartDate: "2020"}, "2020"},
		{Experience{}, ""},
	}
	for _, tc := range tests {
		if got := tc.exp.DateRange(); got != tc.want {
			t.Fatalf("DateRange(%+v) = %q, want %q", tc.exp, got, tc.want)
		}
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	doc := sampleDocument()
	data, err := EncodeArtifact(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodeArtifact(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(doc, back) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, doc)
	}
}

func TestDecodeArtifactRejectsInvalid(t *testing.T) {
	inputs := []string{
		`not json`,
		`[]`,
		`{"skills": "Go"}`,
		`{"experience": [{"current": "yes"}]}`,
		`{"unknown": 1}`,
	}
	for _, in := range inputs {
		if _, err := DecodeArtifact([]byte(in)); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("DecodeArtifact(%s) expected ErrInvalidDocument, got %v", in, err)
		}
	}
}

func TestCloneDoesNotShare(t *testing.T) {
	doc := sampleDocument()
	c := doc.Clone()
	c.Skills[0] = "Rust"
	c.Experience[0].Company = "Other"
	c.AdditionalSections["languages"].([]any)[0] = "French"
	if doc.Skills[0] != "Go" || doc.Experience[0].Company != "Acme" {
		t.Fatalf("clone shares slices with original")
	}
	if doc.AdditionalSections["languages"].([]any)[0] != "English" {
		t.Fatalf("clone shares nested map values")
	}
}

func TestDecodeSaved(t *testing.T) {
	doc := Document{PersonalInfo: PersonalInfo{FullName: "Jane Doe"}, Skills: []string{"Go"}}
	raw, err := json.Marshal(SavedResume{Title: TitleFor(doc), TemplateID: "classic-elegant", Document: doc})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := DecodeSaved(raw)
	if err != nil {
		t.Fatalf("DecodeSaved: %v", err)
	}
	if got.Title != "Jane Doe Resume" || got.TemplateID != "classic-elegant" || got.Document.Skills[0] != "Go" {
		t.Fatalf("unexpected saved resume %+v", got)
	}
	if _, err := DecodeSaved([]byte(`{"document":{"skills":"Go"}}`)); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	if TitleFor(Document{}) != "Untitled Resume" {
		t.Fatalf("unexpected default title")
	}
}
