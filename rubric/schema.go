package rubric

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// JSONSchema exports the expected judgment-object shape as a JSON
// schema: one required boolean property per criterion id, one optional
// string property "<id>_justification" per id, and no additional
// properties. The schema is suitable for structured-output APIs
// (OpenAI response_format, Gemini response_schema, and similar); this
// package only produces the shape, it never calls a generator.
//
// Every call allocates a fresh schema.
func (r *Rubric) JSONSchema() *jsonschema.Schema {
	properties := jsonschema.NewProperties()
	required := make([]string, 0, len(r.criteria))

	for _, c := range r.criteria {
		properties.Set(c.ID, &jsonschema.Schema{
			Type:        "boolean",
			Description: "Does this pass the criterion: " + c.Description,
		})
		required = append(required, c.ID)

		properties.Set(c.ID+JustificationSuffix, &jsonschema.Schema{
			Type:        "string",
			Description: fmt.Sprintf("Justification for the %s evaluation", c.ID),
		})
	}

	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           properties,
		Required:             required,
		AdditionalProperties: jsonschema.FalseSchema,
		Description:          "Evaluation results for rubric: " + r.rubricID,
	}
}

// JSONSchemaBytes renders the exported schema as JSON, ready to hand to
// schema validators or API request builders.
func (r *Rubric) JSONSchemaBytes() ([]byte, error) {
	data, err := json.Marshal(r.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema for rubric %q: %w", r.rubricID, err)
	}
	return data, nil
}
