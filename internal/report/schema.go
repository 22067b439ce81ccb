package report

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const historySchemaJSON = `{
  "type": "object",
  "properties": {
    "loss":         {"type": ["array", "null"], "items": {"type": "number"}},
    "accuracy":     {"type": ["array", "null"], "items": {"type": "number"}},
    "val_loss":     {"type": ["array", "null"], "items": {"type": "number"}},
    "val_accuracy": {"type": ["array", "null"], "items": {"type": "number"}}
  }
}`

// Only sampling keys are constrained; any other entry is skipped on decode.
const samplesSchemaJSON = `{
  "type": "object",
  "patternProperties": {
    "t[\\d.]+_k\\d+_p[\\d.]+": {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	historySchema = mustSchema(historySchemaJSON)
	samplesSchema = mustSchema(samplesSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("report: invalid embedded schema: %v", err))
	}
	return schema
}

// validateDocument checks data against schema. Malformed JSON is reported as
// an error as well.
func validateDocument(schema *gojsonschema.Schema, name string, data []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("%s failed validation: %s", name, strings.Join(details, "; "))
}
