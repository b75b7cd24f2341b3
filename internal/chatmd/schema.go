// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatmd

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// =============================================================================
// FENCE PAYLOAD SCHEMAS
// =============================================================================

const toolCallSchemaJSON = `{
	"type": "object",
	"required": ["toolCallId", "toolName", "args"],
	"properties": {
		"toolCallId": {"type": "string"},
		"toolName":   {"type": "string"},
		"args":       {"type": "object"}
	}
}`

const toolResultSchemaJSON = `{
	"type": "object",
	"required": ["toolCallId", "toolName", "result"],
	"properties": {
		"toolCallId": {"type": "string"},
		"toolName":   {"type": "string"},
		"result":     {"type": "object"}
	}
}`

// Compiled once at startup; the fence bodies of every parse run through
// these validators before unmarshalling.
var (
	toolCallSchema   = mustCompileSchema(toolCallSchemaJSON)
	toolResultSchema = mustCompileSchema(toolResultSchemaJSON)
)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("chatmd: invalid embedded schema: " + err.Error())
	}
	return schema
}

// validatePayload checks a fence body against a schema and returns a short
// human-readable reason on failure.
func validatePayload(schema *gojsonschema.Schema, body []byte) (ok bool, reason string) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return false, "invalid JSON: " + err.Error()
	}
	if result.Valid() {
		return true, ""
	}
	var reasons []string
	for _, desc := range result.Errors() {
		reasons = append(reasons, desc.String())
	}
	return false, strings.Join(reasons, "; ")
}
