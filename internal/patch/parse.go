// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package patch

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// =============================================================================
// TEXT FORMAT
// =============================================================================

// The plain-text patch format is column-anchored: headers and markers sit
// at column 0, content lines lie between the markers.
//
//	*** Add File: <path>
//	<<< ADD
//	...content...
//	>>>
//
//	*** Delete File: <path>
//
//	*** Move File: <path>
//	<<< TO
//	<destination>
//	>>>
//
//	*** Update File: <path>
//	<<< SEARCH
//	...search...
//	===
//	...replace...
//	>>>
const (
	hdrAdd     = "*** Add File: "
	hdrDelete  = "*** Delete File: "
	hdrUpdate  = "*** Update File: "
	hdrMove    = "*** Move File: "
	markAdd    = "<<< ADD"
	markTo     = "<<< TO"
	markSearch = "<<< SEARCH"
	markSep    = "==="
	markEnd    = ">>>"
)

// isMarker matches a column-anchored marker line; trailing whitespace is
// tolerated, leading whitespace is not.
func isMarker(line, marker string) bool {
	return strings.TrimRight(line, " \t") == marker
}

// ParseText extracts patches from model output. Blocks concatenate with no
// separators; lines that match nothing are skipped; an incomplete block
// yields no patch and never corrupts the parse of the blocks after it.
func ParseText(src string) []FilePatch {
	lines := strings.Split(src, "\n")
	var patches []FilePatch

	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, hdrDelete):
			if path := strings.TrimSpace(strings.TrimPrefix(line, hdrDelete)); path != "" {
				patches = append(patches, FilePatch{Kind: KindDelete, Path: path})
			}
			i++
		case strings.HasPrefix(line, hdrAdd):
			if p, next, ok := parseContentBlock(lines, i, hdrAdd, markAdd, KindAdd); ok {
				patches = append(patches, p)
				i = next
			} else {
				i++
			}
		case strings.HasPrefix(line, hdrMove):
			if p, next, ok := parseContentBlock(lines, i, hdrMove, markTo, KindMove); ok {
				patches = append(patches, p)
				i = next
			} else {
				i++
			}
		case strings.HasPrefix(line, hdrUpdate):
			if p, next, ok := parseUpdateBlock(lines, i); ok {
				patches = append(patches, p)
				i = next
			} else {
				i++
			}
		default:
			i++
		}
	}
	return patches
}

// parseContentBlock handles the add and move shapes: header, open marker,
// content lines, end marker.
func parseContentBlock(lines []string, i int, hdr, open string, kind Kind) (FilePatch, int, bool) {
	path := strings.TrimSpace(strings.TrimPrefix(lines[i], hdr))
	if path == "" {
		return FilePatch{}, 0, false
	}
	j := i + 1
	if j >= len(lines) || !isMarker(lines[j], open) {
		return FilePatch{}, 0, false
	}
	j++
	start := j
	for j < len(lines) && !isMarker(lines[j], markEnd) {
		j++
	}
	if j == len(lines) {
		// No closing marker: incomplete block, emit nothing.
		return FilePatch{}, 0, false
	}
	body := strings.Join(lines[start:j], "\n")

	p := FilePatch{Kind: kind, Path: path}
	switch kind {
	case KindAdd:
		p.Content = body
	case KindMove:
		p.To = strings.TrimSpace(body)
		if p.To == "" {
			return FilePatch{}, 0, false
		}
	default:
		panic("patch: parseContentBlock called with kind " + kind.String())
	}
	return p, j + 1, true
}

// parseUpdateBlock handles: header, SEARCH marker, search lines, ===,
// replace lines, end marker.
func parseUpdateBlock(lines []string, i int) (FilePatch, int, bool) {
	path := strings.TrimSpace(strings.TrimPrefix(lines[i], hdrUpdate))
	if path == "" {
		return FilePatch{}, 0, false
	}
	j := i + 1
	if j >= len(lines) || !isMarker(lines[j], markSearch) {
		return FilePatch{}, 0, false
	}
	j++
	searchStart := j
	for j < len(lines) && !isMarker(lines[j], markSep) {
		if isMarker(lines[j], markEnd) {
			// End before separator: malformed, no replace half.
			return FilePatch{}, 0, false
		}
		j++
	}
	if j == len(lines) {
		return FilePatch{}, 0, false
	}
	search := strings.Join(lines[searchStart:j], "\n")
	j++
	replaceStart := j
	for j < len(lines) && !isMarker(lines[j], markEnd) {
		j++
	}
	if j == len(lines) {
		return FilePatch{}, 0, false
	}
	replace := strings.Join(lines[replaceStart:j], "\n")

	if search == "" {
		return FilePatch{}, 0, false
	}
	return FilePatch{Kind: KindUpdate, Path: path, Search: search, Replace: replace}, j + 1, true
}

// =============================================================================
// STRUCTURED FORMAT
// =============================================================================

const patchArraySchemaJSON = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["type", "path"],
		"properties": {
			"type":    {"type": "string", "enum": ["add", "delete", "update", "move", "replace"]},
			"path":    {"type": "string", "minLength": 1},
			"content": {"type": "string"},
			"search":  {"type": "string"},
			"replace": {"type": "string"},
			"to":      {"type": "string"}
		},
		"allOf": [
			{"if": {"properties": {"type": {"const": "add"}}},     "then": {"required": ["content"]}},
			{"if": {"properties": {"type": {"const": "replace"}}}, "then": {"required": ["content"]}},
			{"if": {"properties": {"type": {"const": "update"}}},  "then": {"required": ["search", "replace"]}},
			{"if": {"properties": {"type": {"const": "move"}}},    "then": {"required": ["to"]}}
		]
	}
}`

var patchArraySchema = mustCompileSchema(patchArraySchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("patch: invalid embedded schema: " + err.Error())
	}
	return schema
}

type patchObject struct {
	Type    string `json:"type"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Search  string `json:"search"`
	Replace string `json:"replace"`
	To      string `json:"to"`
}

// ParseObjects parses the structured-object encoding: a JSON array of
// patch objects. Both encodings produce the same FilePatch union.
func ParseObjects(jsonArray []byte) ([]FilePatch, error) {
	result, err := patchArraySchema.Validate(gojsonschema.NewBytesLoader(jsonArray))
	if err != nil {
		return nil, &ConflictError{Op: "parse", Path: "", Reason: "invalid JSON: " + err.Error()}
	}
	if !result.Valid() {
		var reasons []string
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, &ConflictError{Op: "parse", Path: "", Reason: strings.Join(reasons, "; ")}
	}

	var objs []patchObject
	if err := json.Unmarshal(jsonArray, &objs); err != nil {
		return nil, &ConflictError{Op: "parse", Path: "", Reason: err.Error()}
	}

	patches := make([]FilePatch, 0, len(objs))
	for _, o := range objs {
		p := FilePatch{Path: o.Path}
		switch o.Type {
		case "add":
			p.Kind = KindAdd
			p.Content = o.Content
		case "delete":
			p.Kind = KindDelete
		case "update":
			p.Kind = KindUpdate
			p.Search = o.Search
			p.Replace = o.Replace
		case "move":
			p.Kind = KindMove
			p.To = o.To
		case "replace":
			p.Kind = KindReplace
			p.Content = o.Content
		default:
			// Unreachable: the schema pins the enum.
			continue
		}
		if err := p.Validate(); err != nil {
			return nil, &ConflictError{Op: "parse", Path: o.Path, Reason: err.Error()}
		}
		patches = append(patches, p)
	}
	return patches, nil
}
