package block

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/blockquest/blockgen/pkgs/errors"
)

// programSchema structurally validates block payloads at the service
// boundary before any decoding: every record carries a 'type' string and a
// 'params' object, and loop/conditional body fields are sequences of
// block-shaped records all the way down. Command-set membership and
// required parameters are checked later during the render walk.
const programSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": { "$ref": "#/$defs/block" },
	"$defs": {
		"block": {
			"type": "object",
			"required": ["type", "params"],
			"properties": {
				"type": { "type": "string" },
				"params": { "type": "object" }
			},
			"allOf": [
				{
					"if": { "properties": { "type": { "const": "loop" } } },
					"then": {
						"properties": {
							"params": {
								"properties": {
									"body": {
										"type": "array",
										"items": { "$ref": "#/$defs/block" }
									}
								}
							}
						}
					}
				},
				{
					"if": { "properties": { "type": { "const": "conditional" } } },
					"then": {
						"properties": {
							"params": {
								"properties": {
									"if_body": {
										"type": "array",
										"items": { "$ref": "#/$defs/block" }
									},
									"else_body": {
										"type": "array",
										"items": { "$ref": "#/$defs/block" }
									}
								}
							}
						}
					}
				}
			]
		}
	}
}`

var compiledProgramSchema = jsonschema.MustCompileString("program.schema.json", programSchema)

// ValidateDocument checks an already-decoded JSON document against the
// program schema.
func ValidateDocument(doc interface{}) error {
	if err := compiledProgramSchema.Validate(doc); err != nil {
		return errors.NewDecodeError("block payload failed structural validation", err)
	}
	return nil
}

// DecodeProgram parses and structurally validates a JSON array of
// block-shaped records.
func DecodeProgram(data []byte) (Program, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewDecodeError("block payload is not valid JSON", err)
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	var program Program
	if err := json.Unmarshal(data, &program); err != nil {
		return nil, errors.NewDecodeError("block payload could not be decoded", err)
	}
	return program, nil
}
