package wire

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaFile = "message.schema.json"

// Schema describes the on-disk message document.
const Schema = `
{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "https://stepmerge.io/message.schema.json.1.0",
  "title": "channel message",
  "type": "object",
  "required": ["kind", "values"],
  "additionalProperties": false,
  "properties": {
    "kind": {
      "type": "string",
      "enum": ["META", "DATA", "DONE"]
    },
    "values": {
      "type": "array",
      "items": {"type": "integer"},
      "maxItems": 10
    }
  }
}
`

var compiledSchema = jsonschema.MustCompileString(schemaFile, Schema)

func validateSchema(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal message data: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("validate message data: %w", err)
	}
	return nil
}
