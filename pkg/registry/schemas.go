package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateConfig checks a node configuration document against the JSON
// schema declared by the node type's factory. Types without a registered
// factory (the engine's reserved behaviors) are accepted here; their config
// contracts are enforced by definition validation.
func (r *Registry) ValidateConfig(nodeType string, config map[string]any) error {
	factory, ok := r.actionFactories[nodeType]
	if !ok {
		return nil
	}

	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema for type %s: %w", nodeType, err)
	}

	if config == nil {
		config = map[string]any{}
	}

	configJSON, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(configJSON),
	)
	if err != nil {
		return fmt.Errorf("schema validation for type %s: %w", nodeType, err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		details = append(details, resultErr.String())
	}

	return fmt.Errorf("config does not match schema for type %s: %s", nodeType, strings.Join(details, "; "))
}
