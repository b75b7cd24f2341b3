// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"path/filepath"
)

// ResolveReal canonicalizes a path by resolving symlinks. Components
// that do not exist yet are rejoined onto the deepest resolvable
// ancestor, so a file about to be created still canonicalizes through
// any existing symlinked parent. When nothing on the path resolves, the
// input is returned unchanged.
func ResolveReal(path string) string {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}

	suffix := ""
	dir := path
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return path
		}
		suffix = filepath.Join(filepath.Base(dir), suffix)
		dir = parent
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(real, suffix)
		}
	}
}
