package llm

import _ "embed"

var (
	//go:embed prompts/resume_system.txt
	resumeSystemPrompt string
	//go:embed prompts/analysis_system.txt
	analysisSystemPrompt string
)

// ResumeSystemPrompt is the default system instruction for resume generation.
func ResumeSystemPrompt() string {
	return resumeSystemPrompt
}

// AnalysisSystemPrompt is the system instruction for fit analysis.
func AnalysisSystemPrompt() string {
	return analysisSystemPrompt
}
