package wizard

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"resumepro/resume/model"
)

// Step identifies one form of the wizard.
type Step string

// Steps in wizard order.
const (
	StepPersonal   Step = "personal"
	StepSummary    Step = "summary"
	StepExperience Step = "experience"
	StepEducation  Step = "education"
	StepSkills     Step = "skills"
)

// Order is the fixed step sequence.
var Order = []Step{StepPersonal, StepSummary, StepExperience, StepEducation, StepSkills}

// ParseStep accepts a step name in any case.
func ParseStep(s string) (Step, bool) {
	step := Step(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Order {
		if step == known {
			return step, true
		}
	}
	return "", false
}

// Issue is a non-blocking validation finding for one field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Controller turns one step's request body into a partial document.
// A controller only ever sets its own top-level key.
type Controller interface {
	Step() Step
	Apply(body json.RawMessage) (model.PartialDocument, []Issue, error)
}

// Controllers returns the five step controllers keyed by step.
func Controllers() map[Step]Controller {
	return map[Step]Controller{
		StepPersonal:   personalController{},
		StepSummary:    summaryController{},
		StepExperience: experienceController{},
		StepEducation:  educationController{},
		StepSkills:     skillsController{},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func decode(body json.RawMessage, dst any) error {
	if len(body) == 0 {
		return fmt.Errorf("%w: body is empty", ErrInvalidStepBody)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStepBody, err)
	}
	return nil
}

func issuesFor(v any) []Issue {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Issue{{Field: "", Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{Field: fieldPath(fe.Namespace()), Message: issueMessage(fe)})
	}
	return issues
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return "add at least one entry"
	default:
		return "is invalid"
	}
}

type personalInput struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin" validate:"omitempty,url"`
	Website  string `json:"website" validate:"omitempty,url"`
}

type personalController struct{}

func (personalController) Step() Step { return StepPersonal }

// Apply expects the personalInfo object itself.
func (personalController) Apply(body json.RawMessage) (model.PartialDocument, []Issue, error) {
	var in personalInput
	if err := decode(body, &in); err != nil {
		return model.PartialDocument{}, nil, err
	}
	info := model.PersonalInfo{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Location: strings.TrimSpace(in.Location),
		LinkedIn: strings.TrimSpace(in.LinkedIn),
		Website:  strings.TrimSpace(in.Website),
	}
	in = personalInput(info)
	return model.PartialDocument{PersonalInfo: &info}, issuesFor(in), nil
}

type summaryInput struct {
	Summary string `json:"summary" validate:"required"`
}

type summaryController struct{}

func (summaryController) Step() Step { return StepSummary }

func (summaryController) Apply(body json.RawMessage) (model.PartialDocument, []Issue, error) {
	var in summaryInput
	if err := decode(body, &in); err != nil {
		return model.PartialDocument{}, nil, err
	}
	summary := strings.TrimSpace(in.Summary)
	return model.PartialDocument{Summary: &summary}, issuesFor(summaryInput{Summary: summary}), nil
}

type experienceEntry struct {
	ID          string `json:"id"`
	JobTitle    string `json:"jobTitle" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type experienceInput struct {
	Experience []experienceEntry `json:"experience" validate:"dive"`
}

type experienceController struct{}

func (experienceController) Step() Step { return StepExperience }

func (experienceController) Apply(body json.RawMessage) (model.PartialDocument, []Issue, error) {
	var in experienceInput
	if err := decode(body, &in); err != nil {
		return model.PartialDocument{}, nil, err
	}
	entries := make([]model.Experience, 0, len(in.Experience))
	for i, e := range in.Experience {
		e.JobTitle = strings.TrimSpace(e.JobTitle)
		e.Company = strings.TrimSpace(e.Company)
		in.Experience[i] = e
		entry := model.Experience(e)
		if entry.Current {
			entry.EndDate = ""
		}
		entries = append(entries, entry)
	}
	entries = model.NormalizeExperience(entries)
	return model.PartialDocument{Experience: &entries}, issuesFor(in), nil
}

type educationEntry struct {
	ID             string `json:"id"`
	Degree         string `json:"degree" validate:"required"`
	Institution    string `json:"institution" validate:"required"`
	Location       string `json:"location"`
	GraduationDate string `json:"graduationDate"`
	GPA            string `json:"gpa,omitempty"`
}

type educationInput struct {
	Education []educationEntry `json:"education" validate:"dive"`
}

type educationController struct{}

func (educationController) Step() Step { return StepEducation }

func (educationController) Apply(body json.RawMessage) (model.PartialDocument, []Issue, error) {
	var in educationInput
	if err := decode(body, &in); err != nil {
		return model.PartialDocument{}, nil, err
	}
	entries := make([]model.Education, 0, len(in.Education))
	for i, e := range in.Education {
		e.Degree = strings.TrimSpace(e.Degree)
		e.Institution = strings.TrimSpace(e.Institution)
		in.Education[i] = e
		entries = append(entries, model.Education(e))
	}
	entries = model.NormalizeEducation(entries)
	return model.PartialDocument{Education: &entries}, issuesFor(in), nil
}

type skillsInput struct {
	Skills []string `json:"skills" validate:"min=1"`
}

type skillsController struct{}

func (skillsController) Step() Step { return StepSkills }

func (skillsController) Apply(body json.RawMessage) (model.PartialDocument, []Issue, error) {
	var in skillsInput
	if err := decode(body, &in); err != nil {
		return model.PartialDocument{}, nil, err
	}
	skills := model.DedupeSkills(in.Skills)
	return model.PartialDocument{Skills: &skills}, issuesFor(skillsInput{Skills: skills}), nil
}
