package scoring

import "errors"

// ErrEmptyResume is returned when there is no resume text to score.
var ErrEmptyResume = errors.New("resume text is required")

// Request is the analyze-resume function input.
type Request struct {
	ResumeText string `json:"resumeText"`
	FileName   string `json:"fileName"`
}

// Result is the analyze-resume function output. Scores are always within [0,100].
type Result struct {
	OverallScore    int      `json:"overallScore"`
	DesignScore     int      `json:"designScore"`
	ClarityScore    int      `json:"clarityScore"`
	AtsScore        int      `json:"atsScore"`
	Recommendations []string `json:"recommendations"`
}

// Fallback is returned whenever the model output cannot be used.
func Fallback() Result {
	return Result{
		OverallScore: 65,
		DesignScore:  60,
		ClarityScore: 70,
		AtsScore:     65,
		Recommendations: []string{
			"Add measurable achievements with numbers to each role",
			"Use standard section headings so ATS systems can parse your resume",
			"Tailor your skills section to the keywords in the job description",
			"Keep formatting consistent and limit the resume to one or two pages",
		},
	}
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Clamp forces every score into [0,100].
func (r Result) Clamp() Result {
	r.OverallScore = clamp(r.OverallScore)
	r.DesignScore = clamp(r.DesignScore)
	r.ClarityScore = clamp(r.ClarityScore)
	r.AtsScore = clamp(r.AtsScore)
	return r
}
