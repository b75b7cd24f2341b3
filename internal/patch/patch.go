// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package patch

import "fmt"

// =============================================================================
// FILE PATCH UNION
// =============================================================================

// Kind discriminates the patch union.
type Kind int

const (
	KindAdd Kind = iota
	KindDelete
	KindUpdate
	KindMove
	KindReplace
)

// String returns the string representation of a patch kind.
func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindDelete:
		return "delete"
	case KindUpdate:
		return "update"
	case KindMove:
		return "move"
	case KindReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// FilePatch is one declarative file mutation. It is built from a single
// tool-call payload, validated, optionally filtered by the user, applied
// at most once, then discarded.
type FilePatch struct {
	Kind Kind

	// Path is the target file, relative to the project root.
	Path string

	// Content is the new file body for add and replace patches.
	Content string

	// Search and Replace are the update patch's matched block and its
	// replacement.
	Search  string
	Replace string

	// To is the destination path for move patches.
	To string
}

// Validate checks structural well-formedness. It does not touch the
// filesystem; existence preconditions are the applier's concern.
func (p FilePatch) Validate() error {
	if p.Path == "" {
		return fmt.Errorf("%s patch: empty path", p.Kind)
	}
	switch p.Kind {
	case KindAdd, KindReplace, KindDelete:
		return nil
	case KindUpdate:
		if p.Search == "" {
			return fmt.Errorf("update patch for %s: empty search block", p.Path)
		}
		return nil
	case KindMove:
		if p.To == "" {
			return fmt.Errorf("move patch for %s: empty destination", p.Path)
		}
		return nil
	default:
		return fmt.Errorf("unknown patch kind %d", p.Kind)
	}
}

// Describe returns a one-line human-readable summary, used in confirmation
// prompts and logs.
func (p FilePatch) Describe() string {
	switch p.Kind {
	case KindMove:
		return "move " + p.Path + " -> " + p.To
	default:
		return p.Kind.String() + " " + p.Path
	}
}
