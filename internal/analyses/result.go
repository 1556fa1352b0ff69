package analyses

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"jobtracker-backend/internal/resumes"
)

type rawResult struct {
	MatchScore     float64            `json:"matchScore"`
	ScoreBreakdown map[string]float64 `json:"scoreBreakdown"`
	Suggestions    json.RawMessage    `json:"suggestions"`
}

// parseResult decodes a validated answer, clamping every score to 0..100.
func parseResult(raw string, analyzedAt time.Time) (resumes.Analysis, error) {
	var r rawResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return resumes.Analysis{}, err
	}
	breakdown := make(map[string]int, len(r.ScoreBreakdown))
	for category, score := range r.ScoreBreakdown {
		category = strings.TrimSpace(category)
		if category == "" {
			continue
		}
		breakdown[category] = clampScore(score)
	}
	return resumes.Analysis{
		MatchScore:     clampScore(r.MatchScore),
		ScoreBreakdown: breakdown,
		Suggestions:    suggestionsText(r.Suggestions),
		AnalyzedAt:     analyzedAt,
	}, nil
}

func clampScore(value float64) int {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return int(math.Round(value))
}

// suggestionsText accepts a string or a list of strings; lists are joined by newlines.
func suggestionsText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n")
}
