package registry

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// descriptorSchemaJSON is the embedded JSON Schema every externally
// declared tool descriptor file must satisfy before registration.
// Grounded on packages/validation/api.go's //go:embed + compile pattern.
//
//go:embed descriptor.schema.json
var descriptorSchemaJSON []byte

var compiledDescriptorSchema *jsonschema.Schema

func descriptorSchema() (*jsonschema.Schema, error) {
	if compiledDescriptorSchema != nil {
		return compiledDescriptorSchema, nil
	}
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(descriptorSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal descriptor schema: %w", err)
	}
	const resourceName = "mem://descriptor.schema.json"
	if err := c.AddResource(resourceName, doc); err != nil {
		return nil, fmt.Errorf("add descriptor schema resource: %w", err)
	}
	schema, err := c.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile descriptor schema: %w", err)
	}
	compiledDescriptorSchema = schema
	return schema, nil
}

// ValidateDescriptorDoc validates a decoded (map[string]any) descriptor
// document against the embedded schema before it is converted into a
// ToolDefinition.
func ValidateDescriptorDoc(doc any) error {
	schema, err := descriptorSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("tool descriptor failed schema validation: %w", err)
	}
	return nil
}

// ExternalDescriptorsDir is the conventional location for externally
// declared tool descriptor files relative to the metadata directory.
func ExternalDescriptorsDir(metaDir string) string {
	return filepath.Join(metaDir, "tools")
}
