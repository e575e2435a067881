package voice

import (
	"fmt"
	"strings"

	"gitlab.com/timkado/api/agency-core/internal/model"
)

// Schema is the JSON schema the voice assistant fills during a call.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property describes one collected value.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

var businessTypeEnum = []string{"Corporation", "Individual", "Partnership"}

func schemaType(t model.FieldType) string {
	switch t {
	case model.FieldTypeNumber:
		return "number"
	case model.FieldTypeBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// BuildSchema describes fields as an object schema keyed by field id. Every
// property is required.
func BuildSchema(fields []model.Field) Schema {
	s := Schema{
		Type:       "object",
		Properties: make(map[string]Property, len(fields)),
		Required:   make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		prop := Property{Type: schemaType(f.FieldType), Description: f.Description}
		if f.FieldID == "business_type" {
			prop.Enum = businessTypeEnum
		}
		if _, seen := s.Properties[f.FieldID]; !seen {
			s.Required = append(s.Required, f.FieldID)
		}
		s.Properties[f.FieldID] = prop
	}
	return s
}

// MissingFieldsText renders one "- Name (description)" line per field.
func MissingFieldsText(fields []model.Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("- %s (%s)", f.Name, f.Description))
	}
	return strings.Join(lines, "\n")
}
