// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/conc/iter"

	"github.com/jeranaias/chatfile/internal/util"
)

// maxReadBytes caps the content returned for a single file.
const maxReadBytes = 256 * 1024

// ReadFilesTool reads one or more files. Reads are dispatched
// concurrently; result order always matches request order, and each file
// reports its own ok flag so one unreadable path never fails the batch.
func ReadFilesTool(root string) *Tool {
	return &Tool{
		Name:        "read_files",
		Description: "Read the contents of one or more project files.",
		Schema: Schema{Parameters: []Parameter{
			{Name: "paths", Type: "array", Required: true, Description: "Relative paths of the files to read"},
		}},
		Permission: PermissionAuto,
		Executor:   &readFilesExecutor{root: root},
	}
}

type readFilesExecutor struct {
	root string
}

func (r *readFilesExecutor) Execute(ctx context.Context, params map[string]any) (Result, error) {
	raw, _ := params["paths"].([]any)
	if len(raw) == 0 {
		return Result{Success: false, Error: "paths must be a non-empty array"}, nil
	}

	paths := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok || s == "" {
			return Result{Success: false, Error: "paths must contain only non-empty strings"}, nil
		}
		paths = append(paths, s)
	}

	items := iter.Map(paths, func(p *string) map[string]any {
		if err := ctx.Err(); err != nil {
			return map[string]any{"ok": false, "path": *p, "error": err.Error()}
		}
		return r.readOne(*p)
	})

	allOK := true
	for _, it := range items {
		if ok, _ := it["ok"].(bool); !ok {
			allOK = false
		}
	}
	return Result{Success: allOK, Items: items}, nil
}

func (r *readFilesExecutor) readOne(rel string) map[string]any {
	full, err := resolveUnder(r.root, rel)
	if err != nil {
		return map[string]any{"ok": false, "path": rel, "error": err.Error()}
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return map[string]any{"ok": false, "path": rel, "error": err.Error()}
	}

	content := string(data)
	item := map[string]any{"ok": true, "path": rel}
	if len(content) > maxReadBytes {
		item["content"] = content[:maxReadBytes]
		item["truncated"] = true
	} else {
		item["content"] = content
	}
	return item
}

// resolveUnder joins rel with root and rejects resolutions escaping it,
// both lexically and after symlink canonicalization.
func resolveUnder(root, rel string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(abs, rel)
	if !containedIn(abs, full) {
		return "", &escapeError{path: rel}
	}
	if !containedIn(util.ResolveReal(abs), util.ResolveReal(full)) {
		return "", &escapeError{path: rel}
	}
	return full, nil
}

func containedIn(root, path string) bool {
	r, err := filepath.Rel(root, path)
	return err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator))
}

type escapeError struct{ path string }

func (e *escapeError) Error() string {
	return "path escapes project root: " + e.path
}
