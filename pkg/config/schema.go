package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema reflects the JSON Schema of the configuration file.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		FieldNameTag:   "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "leadmigrate configuration"
	schema.Description = "Optional settings for the lead fixture migration."

	// Every top-level field is optional
	schema.Required = nil
	return schema
}

// SchemaJSON renders Schema with two-space indentation.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
