package analyses

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// resultSchema is sent with the request and checked against the answer. Suggestions
// may come back as one string or as a list of lines.
const resultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "FitAnalysis",
  "type": "object",
  "required": ["matchScore", "scoreBreakdown", "suggestions"],
  "properties": {
    "matchScore": { "type": "number" },
    "scoreBreakdown": {
      "type": "object",
      "additionalProperties": { "type": "number" }
    },
    "suggestions": {
      "oneOf": [
        { "type": "string" },
        { "type": "array", "items": { "type": "string" } }
      ]
    }
  }
}`

var resultSchemaLoader = gojsonschema.NewStringLoader(resultSchema)

func validateResult(raw string) error {
	res, err := gojsonschema.Validate(resultSchemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("validate analysis: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("analysis does not match schema: %s", strings.Join(msgs, "; "))
}
