package validation

import (
	_ "embed"
	"sync"
)

//go:embed metadata.schema.json
var metadataSchemaDocument []byte

var (
	metadataSchemaOnce sync.Once
	metadataSchema     *Schema
	metadataSchemaErr  error
)

// ValidateMetadata checks a decoded metadata.yaml (or front matter) document
// against the embedded content metadata schema.
func ValidateMetadata(document map[string]any) error {
	metadataSchemaOnce.Do(func() {
		metadataSchema, metadataSchemaErr = CompileSchema("metadata.schema.json", metadataSchemaDocument)
	})
	if metadataSchemaErr != nil {
		return metadataSchemaErr
	}
	return metadataSchema.Validate(document)
}
