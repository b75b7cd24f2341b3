// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"github.com/jeranaias/chatfile/internal/ignore"
	"github.com/jeranaias/chatfile/internal/patch"
)

// NewDefaultRegistry builds a registry with the built-in tools, all
// scoped to the given project root.
func NewDefaultRegistry(root string, cache *ignore.Cache) *Registry {
	applier := patch.NewApplier(root)

	r := NewRegistry()
	r.Register(ListFilesTool(root, cache))
	r.Register(ReadFilesTool(root))
	r.Register(WriteFileTool(applier))
	r.Register(ApplyPatchTool(applier))
	return r
}
