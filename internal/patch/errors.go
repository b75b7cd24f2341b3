// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package patch

// ConflictError reports a patch whose precondition failed: an update whose
// search text is absent, an add over an existing file, or a
// delete/move/replace of a missing one. It is reported per patch and fed
// back to the model; it is recoverable and never process-fatal.
type ConflictError struct {
	Op     string // patch kind
	Path   string
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Reason
}

// PathEscapeError reports a patch path that resolves outside the project
// root. It is raised before any I/O; nothing is partially performed.
type PathEscapeError struct {
	Path string
}

func (e *PathEscapeError) Error() string {
	return "path escapes project root: " + e.Path
}
