package registrants

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaName = "registrants.json"

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("registrants: load schema: %w", err)
	}
	compiled, err := compiler.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("registrants: compile schema: %w", err)
	}
	return compiled, nil
}

// validate checks a raw payload and returns the decoded generic value.
func validate(schema *jsonschema.Schema, body []byte) (any, error) {
	var payload any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrBackend, err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("%w: response failed validation: %v", ErrBackend, err)
	}
	return payload, nil
}
