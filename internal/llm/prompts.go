package llm

import (
	_ "embed"
	"strings"
)

const (
	resumeTextToken     = "{{RESUME_TEXT}}"
	jobDescriptionToken = "{{JOB_DESCRIPTION}}"
)

//go:embed prompts/optimize_v1.txt
var optimizePromptV1 string

// BuildOptimizePrompt embeds both inputs verbatim in the optimize template.
// Tokens that appear inside the inputs are left as-is.
func BuildOptimizePrompt(resumeText, jobDescription string) string {
	r := strings.NewReplacer(
		resumeTextToken, resumeText,
		jobDescriptionToken, jobDescription,
	)
	return r.Replace(optimizePromptV1)
}

// OptimizePromptTemplate returns the raw template text.
func OptimizePromptTemplate() string {
	return optimizePromptV1
}
