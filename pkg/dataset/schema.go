package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalid reports a record tree that does not satisfy the schema.
var ErrInvalid = errors.New("dataset: schema validation failed")

const numericPattern = `^\s*[-+]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][-+]?[0-9]+)?\s*$`

// Violation is one schema failure.
type Violation struct {
	Field       string
	Description string
}

// Schema returns the JSON schema every node of a tree read with f must
// satisfy. Children recurse into the root definition.
func Schema(f Fields) string {
	scalar := map[string]any{"type": []string{"string", "number", "integer"}}

	doc := map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"title":    "weighted tree node",
		"type":     "object",
		"required": []string{f.Value},
		"properties": map[string]any{
			f.Value: map[string]any{
				"type":    []string{"number", "string"},
				"pattern": numericPattern,
			},
			f.Label: scalar,
			f.Key:   scalar,
			f.Children: map[string]any{
				"type":  "array",
				"items": map[string]any{"$ref": "#"},
			},
		},
	}

	out, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("dataset: marshal schema: %v", err))
	}

	return string(out)
}

// Validate checks r against Schema(f). It returns ErrInvalid together with
// the violations when the tree does not conform.
func Validate(r Record, f Fields) ([]Violation, error) {
	return ValidateWith(r, gojsonschema.NewStringLoader(Schema(f)))
}

// SchemaFile loads a JSON schema document from path.
func SchemaFile(path string) (gojsonschema.JSONLoader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	return gojsonschema.NewBytesLoader(raw), nil
}

// ValidateWith checks r against a caller supplied schema.
func ValidateWith(r Record, schema gojsonschema.JSONLoader) ([]Violation, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(map[string]any(r)))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, Violation{Field: e.Field(), Description: e.Description()})
	}

	return violations, fmt.Errorf("%w: %d violation(s)", ErrInvalid, len(violations))
}
