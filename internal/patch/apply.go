// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/chatfile/internal/util"
)

// =============================================================================
// UPDATE ENGINE
// =============================================================================

// UpdateText applies an update patch's search/replace to file text and
// returns the new text plus the number of occurrences replaced.
//
// Matching is line-based and whitespace-trimmed per line, so indentation
// and trailing-space drift in model output never blocks a match. EVERY
// non-overlapping occurrence is replaced, in reverse index order so
// earlier splices cannot invalidate later offsets; the spliced-in lines
// are the original replacement lines, not their normalized forms. Callers
// needing precision must widen the search context.
//
// Zero occurrences is an error, never a silent no-op.
func UpdateText(fileText, search, replace string) (string, int, error) {
	if search == "" {
		return "", 0, fmt.Errorf("empty search block")
	}

	fileLines := strings.Split(fileText, "\n")
	searchLines := strings.Split(search, "\n")

	var matches []int
	for i := 0; i+len(searchLines) <= len(fileLines); {
		if matchAt(fileLines, searchLines, i) {
			matches = append(matches, i)
			i += len(searchLines)
		} else {
			i++
		}
	}
	if len(matches) == 0 {
		return "", 0, fmt.Errorf("search text not found")
	}

	var replaceLines []string
	if replace != "" {
		replaceLines = strings.Split(replace, "\n")
	}

	for k := len(matches) - 1; k >= 0; k-- {
		idx := matches[k]
		tail := append([]string{}, fileLines[idx+len(searchLines):]...)
		fileLines = append(fileLines[:idx], append(append([]string{}, replaceLines...), tail...)...)
	}

	return strings.Join(fileLines, "\n"), len(matches), nil
}

// matchAt compares the search block against the file at index i with
// per-line trimmed normalization.
func matchAt(fileLines, searchLines []string, i int) bool {
	for j, s := range searchLines {
		if strings.TrimSpace(fileLines[i+j]) != strings.TrimSpace(s) {
			return false
		}
	}
	return true
}

// =============================================================================
// APPLIER
// =============================================================================

// Applier performs patch mutations against the filesystem, confining every
// path to the project root.
type Applier struct {
	// Root is the project root all patch paths resolve against.
	Root string
}

// NewApplier creates an applier rooted at root.
func NewApplier(root string) *Applier {
	return &Applier{Root: root}
}

// Result pairs one patch with its outcome. Items in a batch succeed or
// fail independently.
type Result struct {
	Patch FilePatch
	Err   error
}

// OK reports whether the patch applied.
func (r Result) OK() bool {
	return r.Err == nil
}

// ApplyAll applies patches in declaration order with independent per-item
// outcomes; one patch's failure never blocks the rest.
func (a *Applier) ApplyAll(patches []FilePatch) []Result {
	results := make([]Result, len(patches))
	for i, p := range patches {
		results[i] = Result{Patch: p, Err: a.Apply(p)}
	}
	return results
}

// Apply performs a single patch. Precondition failures come back as
// *ConflictError, escaping paths as *PathEscapeError; both are reportable
// to the model and leave the filesystem untouched.
func (a *Applier) Apply(p FilePatch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	target, err := a.resolve(p.Path)
	if err != nil {
		return err
	}

	switch p.Kind {
	case KindAdd:
		if _, err := os.Stat(target); err == nil {
			return &ConflictError{Op: "add", Path: p.Path, Reason: "file already exists"}
		} else if !os.IsNotExist(err) {
			return err
		}
		return util.AtomicWriteFile(target, []byte(p.Content), 0644)

	case KindDelete:
		if _, err := os.Stat(target); os.IsNotExist(err) {
			return &ConflictError{Op: "delete", Path: p.Path, Reason: "file does not exist"}
		} else if err != nil {
			return err
		}
		return os.Remove(target)

	case KindReplace:
		info, err := os.Stat(target)
		if os.IsNotExist(err) {
			return &ConflictError{Op: "replace", Path: p.Path, Reason: "file does not exist (use add to create)"}
		} else if err != nil {
			return err
		}
		return util.AtomicWriteFile(target, []byte(p.Content), info.Mode().Perm())

	case KindMove:
		dest, err := a.resolve(p.To)
		if err != nil {
			return err
		}
		if _, err := os.Stat(target); os.IsNotExist(err) {
			return &ConflictError{Op: "move", Path: p.Path, Reason: "file does not exist"}
		} else if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		return os.Rename(target, dest)

	case KindUpdate:
		info, err := os.Stat(target)
		if os.IsNotExist(err) {
			return &ConflictError{Op: "update", Path: p.Path, Reason: "file does not exist"}
		} else if err != nil {
			return err
		}
		data, err := os.ReadFile(target)
		if err != nil {
			return err
		}
		updated, _, uerr := UpdateText(string(data), p.Search, p.Replace)
		if uerr != nil {
			return &ConflictError{Op: "update", Path: p.Path, Reason: uerr.Error()}
		}
		return util.AtomicWriteFile(target, []byte(updated), info.Mode().Perm())

	default:
		return fmt.Errorf("unknown patch kind %d", p.Kind)
	}
}

// resolve joins a patch path with the root and rejects any resolution
// escaping it, before any I/O happens. Containment is checked twice:
// lexically, then again on the symlink-canonicalized path, so a symlink
// inside the root pointing elsewhere cannot smuggle a mutation out.
func (a *Applier) resolve(p string) (string, error) {
	root, err := filepath.Abs(a.Root)
	if err != nil {
		return "", err
	}

	var abs string
	if filepath.IsAbs(p) {
		abs = filepath.Clean(p)
	} else {
		abs = filepath.Join(root, p)
	}

	if !withinRoot(root, abs) {
		return "", &PathEscapeError{Path: p}
	}
	if !withinRoot(util.ResolveReal(root), util.ResolveReal(abs)) {
		return "", &PathEscapeError{Path: p}
	}
	return abs, nil
}

func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
