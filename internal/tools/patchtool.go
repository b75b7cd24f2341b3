// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/jeranaias/chatfile/internal/diff"
	"github.com/jeranaias/chatfile/internal/patch"
)

// ApplyPatchTool applies a batch of file patches written in the patch
// text format. Patches apply independently: one failed patch is reported
// in its own batch entry and never blocks the others.
func ApplyPatchTool(applier *patch.Applier) *Tool {
	return &Tool{
		Name: "apply_patch",
		Description: "Apply file changes described in the patch format: " +
			"*** Add File / Delete File / Move File / Update File blocks.",
		Schema: Schema{Parameters: []Parameter{
			{Name: "patch", Type: "string", Required: false, Description: "Patch text describing the changes"},
			{Name: "patches", Type: "array", Required: false, Description: "Structured patch objects, alternative to patch text"},
		}},
		Permission: PermissionAsk,
		Executor:   &applyPatchExecutor{applier: applier},
	}
}

type applyPatchExecutor struct {
	applier *patch.Applier
}

// parsePatches accepts either the text encoding under "patch" or the
// structured array encoding under "patches".
func parsePatches(params map[string]any) ([]patch.FilePatch, error) {
	if arr, ok := params["patches"].([]any); ok && len(arr) > 0 {
		raw, err := json.Marshal(arr)
		if err != nil {
			return nil, err
		}
		return patch.ParseObjects(raw)
	}
	text, _ := params["patch"].(string)
	return patch.ParseText(text), nil
}

func (a *applyPatchExecutor) Preview(params map[string]any) (string, error) {
	patches, err := parsePatches(params)
	if err != nil {
		return "", err
	}
	if len(patches) == 0 {
		return "no recognizable patches", nil
	}

	var sb strings.Builder
	for i, p := range patches {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Describe())
		sb.WriteString("\n")
		if d := a.previewDiff(p); d != nil && d.HasChanges() {
			sb.WriteString(d.Unified())
		}
	}
	return sb.String(), nil
}

// previewDiff computes the would-be diff for patches whose effect on
// file content is known up front. Move patches have no content diff.
func (a *applyPatchExecutor) previewDiff(p patch.FilePatch) *diff.Diff {
	switch p.Kind {
	case patch.KindAdd:
		return diff.Compute(p.Path, "", p.Content)
	case patch.KindDelete:
		return diff.Compute(p.Path, a.currentContent(p.Path), "")
	case patch.KindReplace:
		return diff.Compute(p.Path, a.currentContent(p.Path), p.Content)
	case patch.KindUpdate:
		old := a.currentContent(p.Path)
		updated, _, err := patch.UpdateText(old, p.Search, p.Replace)
		if err != nil {
			return nil
		}
		return diff.Compute(p.Path, old, updated)
	default:
		return nil
	}
}

func (a *applyPatchExecutor) currentContent(relPath string) string {
	full, err := resolveUnder(a.applier.Root, relPath)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return ""
	}
	return string(data)
}

func (a *applyPatchExecutor) Execute(ctx context.Context, params map[string]any) (Result, error) {
	patches, err := parsePatches(params)
	if err != nil {
		return Result{Success: false, Error: "invalid patches: " + err.Error()}, nil
	}
	if len(patches) == 0 {
		return Result{Success: false, Error: "no recognizable patches in input"}, nil
	}

	results := a.applier.ApplyAll(patches)

	items := make([]map[string]any, len(results))
	allOK := true
	for i, res := range results {
		item := map[string]any{
			"ok":   res.OK(),
			"op":   res.Patch.Kind.String(),
			"path": res.Patch.Path,
		}
		if res.Err != nil {
			allOK = false
			item["error"] = res.Err.Error()

			var conflict *patch.ConflictError
			if errors.As(res.Err, &conflict) {
				item["conflict"] = true
			}
		}
		items[i] = item
	}
	return Result{Success: allOK, Items: items}, nil
}
