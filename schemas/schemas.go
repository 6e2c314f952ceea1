// Package schemas embeds the JSON Schema documents used to validate
// droideval YAML files before they are loaded.
package schemas

import _ "embed"

// EvalSchemaJSON is the JSON Schema for eval spec YAML files.
//
//go:embed eval.schema.json
var EvalSchemaJSON string
