package readings

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

//go:embed schema/reading.json
var readingSchema []byte

// Validator checks inbound sensor payloads against the reading JSON Schema.
// Sensors are external devices; nothing about their output is trusted.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded reading schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(readingSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reading schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks a raw payload against the schema and, on success,
// unmarshals it into a ReadingMessage. Schema violations are collected into
// a single error.
func (v *Validator) Validate(payload []byte) (ReadingMessage, error) {
	var msg ReadingMessage

	var data map[string]interface{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return msg, fmt.Errorf("payload is not valid JSON: %w", err)
	}

	result := v.schema.Validate(data)
	if !result.IsValid() {
		// Collect all validation errors
		var errorMessages []string
		for field, evalErr := range result.Errors {
			errorMessages = append(errorMessages, fmt.Sprintf("%s: %s", field, evalErr.Error()))
		}
		return msg, fmt.Errorf("reading validation failed: %s", strings.Join(errorMessages, "; "))
	}

	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, fmt.Errorf("failed to unmarshal reading: %w", err)
	}

	return msg, nil
}
