package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"resumepro/internal/llm"
	"resumepro/internal/shared/metrics"
	"resumepro/internal/shared/telemetry"
)

const systemPrompt = "You are a resume analysis engine. Respond with JSON only. Output must match the schema exactly."

// Analyzer implements the analyze-resume function.
type Analyzer struct {
	LLM llm.Client
}

// NewAnalyzer constructs an Analyzer. A nil client always yields the fallback.
func NewAnalyzer(client llm.Client) *Analyzer {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	return &Analyzer{LLM: client}
}

// Invoke decodes the function payload, scores it and encodes the result.
func (a *Analyzer) Invoke(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode analyze request: %w", err)
	}
	res, err := a.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

// Analyze scores a resume. Model failures and unusable output yield Fallback.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.ResumeText) == "" {
		return Result{}, ErrEmptyResume
	}
	raw, err := a.LLM.Complete(ctx, llm.Request{
		System:   systemPrompt,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: buildPrompt(req)}},
		JSON:     true,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Result{}, err
		}
		return fallback("llm_error", req, err), nil
	}
	res, err := parseResult(raw)
	if err != nil {
		return fallback("parse_error", req, err), nil
	}
	return res, nil
}

func fallback(reason string, req Request, err error) Result {
	metrics.IncFunctionFallback()
	telemetry.Warn("scoring.fallback", map[string]any{
		"reason":    reason,
		"file_name": req.FileName,
		"error":     err,
	})
	return Fallback()
}

// wireResult accepts numbers in any JSON numeric form. validateOutput
// guarantees every score is present.
type wireResult struct {
	OverallScore    float64  `json:"overallScore"`
	DesignScore     float64  `json:"designScore"`
	ClarityScore    float64  `json:"clarityScore"`
	AtsScore        float64  `json:"atsScore"`
	Recommendations []string `json:"recommendations"`
}

func parseResult(raw string) (Result, error) {
	doc := []byte(llm.CleanJSON(raw))
	if err := validateOutput(doc); err != nil {
		return Result{}, err
	}
	var w wireResult
	if err := json.Unmarshal(doc, &w); err != nil {
		return Result{}, fmt.Errorf("decode model output: %w", err)
	}
	recs := make([]string, 0, len(w.Recommendations))
	for _, r := range w.Recommendations {
		if r = strings.TrimSpace(r); r != "" {
			recs = append(recs, r)
		}
	}
	res := Result{
		OverallScore:    round(w.OverallScore),
		DesignScore:     round(w.DesignScore),
		ClarityScore:    round(w.ClarityScore),
		AtsScore:        round(w.AtsScore),
		Recommendations: recs,
	}
	return res.Clamp(), nil
}

func round(v float64) int {
	switch {
	case v > 1000:
		return 1000
	case v < -1000:
		return -1000
	default:
		return int(math.Round(v))
	}
}
