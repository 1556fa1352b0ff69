package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNoJSON means the response text holds no parseable JSON object.
	ErrNoJSON = errors.New("no json object found")

	fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
)

// ExtractJSON returns the JSON object carried by a model response. Raw JSON,
// fenced code blocks and objects surrounded by prose are accepted.
func ExtractJSON(raw string) (string, error) {
	payload := strings.TrimSpace(raw)
	if payload == "" {
		return "", ErrNoJSON
	}
	if isObject(payload) {
		return payload, nil
	}
	for _, m := range fencePattern.FindAllStringSubmatch(payload, -1) {
		if candidate := strings.TrimSpace(m[1]); isObject(candidate) {
			return candidate, nil
		}
	}

	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start == -1 || end <= start {
		return "", ErrNoJSON
	}
	if candidate := payload[start : end+1]; isObject(candidate) {
		return candidate, nil
	}
	return "", ErrNoJSON
}

func isObject(s string) bool {
	if !strings.HasPrefix(s, "{") {
		return false
	}
	return json.Valid([]byte(s))
}
