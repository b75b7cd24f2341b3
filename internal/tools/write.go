// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"os"

	"github.com/jeranaias/chatfile/internal/diff"
	"github.com/jeranaias/chatfile/internal/patch"
)

// WriteFileTool writes a whole file, creating it if absent. The pending
// change is previewed as a unified diff before confirmation.
func WriteFileTool(applier *patch.Applier) *Tool {
	return &Tool{
		Name:        "write_file",
		Description: "Create or overwrite a single file with the given content.",
		Schema: Schema{Parameters: []Parameter{
			{Name: "path", Type: "string", Required: true, Description: "Relative path of the file"},
			{Name: "content", Type: "string", Required: true, Description: "Full new content of the file"},
		}},
		Permission: PermissionAsk,
		Executor:   &writeFileExecutor{applier: applier},
	}
}

type writeFileExecutor struct {
	applier *patch.Applier
}

func (w *writeFileExecutor) patchFor(params map[string]any) (patch.FilePatch, string) {
	relPath, _ := params["path"].(string)
	content, _ := params["content"].(string)

	old, exists := w.currentContent(relPath)
	kind := patch.KindAdd
	if exists {
		kind = patch.KindReplace
	}
	return patch.FilePatch{Kind: kind, Path: relPath, Content: content}, old
}

func (w *writeFileExecutor) currentContent(relPath string) (string, bool) {
	full, err := resolveUnder(w.applier.Root, relPath)
	if err != nil {
		return "", false
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (w *writeFileExecutor) Preview(params map[string]any) (string, error) {
	p, old := w.patchFor(params)
	d := diff.Compute(p.Path, old, p.Content)
	return d.Summary() + "\n" + d.Unified(), nil
}

func (w *writeFileExecutor) Execute(ctx context.Context, params map[string]any) (Result, error) {
	p, _ := w.patchFor(params)
	if err := w.applier.Apply(p); err != nil {
		return Result{Success: false, Error: err.Error()}, nil
	}
	return Result{Success: true, Output: p.Describe()}, nil
}
