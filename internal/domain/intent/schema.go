package intent

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "intent.schema.json"

const intentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "query":           {"type": ["string", "null"], "maxLength": 256},
    "location":        {"type": ["string", "null"], "maxLength": 256},
    "formatted_query": {"type": ["string", "null"], "maxLength": 512}
  }
}`

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(intentSchema))
	if err != nil {
		return nil, fmt.Errorf("intent schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("intent schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile intent schema: %w", err)
	}
	return schema, nil
}

// validate decodes raw and checks it against the intent schema
func validate(schema *jsonschema.Schema, raw string) (map[string]any, error) {
	var value any
	if err := sonic.UnmarshalString(raw, &value); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("intent does not match schema: %w", err)
	}
	obj, _ := value.(map[string]any)
	return obj, nil
}
