package scoring

import (
	_ "embed"
	"strings"
	"unicode/utf8"
)

//go:embed prompts/analyze.txt
var analyzePrompt string

// maxResumeBytes bounds the text sent to the model.
const maxResumeBytes = 20000

func buildPrompt(req Request) string {
	text := strings.TrimSpace(req.ResumeText)
	text = truncateUTF8(text, maxResumeBytes)
	name := strings.TrimSpace(req.FileName)
	if name == "" {
		name = "resume"
	}
	return strings.NewReplacer(
		"{{FILE_NAME}}", name,
		"{{RESUME_TEXT}}", text,
	).Replace(analyzePrompt)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
