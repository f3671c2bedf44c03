// Package schema publishes JSON Schemas for the documents that cross the
// boundary or configure a host.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/joecorcoran/talks/domain/entities"
)

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// DescriptorSchema is the schema of the JSON returned by describe.
func DescriptorSchema() ([]byte, error) {
	return GenerateSchema(&entities.Descriptor{})
}

// HostConfigSchema is the schema of a host configuration file.
func HostConfigSchema() ([]byte, error) {
	return GenerateSchema(&entities.HostConfig{})
}

// ByName returns the schema called name: "descriptor" or "config".
func ByName(name string) ([]byte, error) {
	switch name {
	case "descriptor":
		return DescriptorSchema()
	case "config":
		return HostConfigSchema()
	default:
		return nil, fmt.Errorf("unknown schema %q (want descriptor or config)", name)
	}
}
