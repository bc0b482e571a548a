package store

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaFile = "state.schema.json"

// Schema describes the persisted state document.
const Schema = `
{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "https://stepmerge.io/state.schema.json.1.0",
  "title": "worker state",
  "type": "object",
  "required": [
    "role", "phase", "own", "partner",
    "send_index", "merge_own_index", "merge_partner_index", "partner_buffer",
    "metadata_sent", "metadata_received", "data_sent", "done_sent", "done_received",
    "output_count", "stats"
  ],
  "additionalProperties": false,
  "properties": {
    "role": {"type": "string", "enum": ["a", "b"]},
    "phase": {"type": "string", "enum": ["INIT", "MERGE", "DONE"]},
    "own": {"$ref": "#/definitions/range"},
    "partner": {
      "oneOf": [
        {"type": "null"},
        {"$ref": "#/definitions/range"}
      ]
    },
    "send_index": {"type": "integer", "minimum": 0},
    "merge_own_index": {"type": "integer", "minimum": 0},
    "merge_partner_index": {"type": "integer", "minimum": 0},
    "partner_buffer": {"type": "array", "items": {"type": "integer"}},
    "metadata_sent": {"type": "boolean"},
    "metadata_received": {"type": "boolean"},
    "data_sent": {"type": "boolean"},
    "done_sent": {"type": "boolean"},
    "done_received": {"type": "boolean"},
    "output_count": {"type": "integer", "minimum": 0},
    "stats": {
      "type": "object",
      "required": ["comparisons", "messages_sent", "messages_received", "values_output"],
      "additionalProperties": false,
      "properties": {
        "comparisons": {"type": "integer", "minimum": 0},
        "messages_sent": {"type": "integer", "minimum": 0},
        "messages_received": {"type": "integer", "minimum": 0},
        "values_output": {"type": "integer", "minimum": 0}
      }
    }
  },
  "definitions": {
    "range": {
      "type": "object",
      "required": ["min", "max", "count"],
      "additionalProperties": false,
      "properties": {
        "min": {"type": "integer"},
        "max": {"type": "integer"},
        "count": {"type": "integer", "minimum": 0}
      }
    }
  }
}
`

var compiledSchema = jsonschema.MustCompileString(schemaFile, Schema)

func validateSchema(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal state data: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("validate state data: %w", err)
	}
	return nil
}
