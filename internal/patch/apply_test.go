// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package patch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateText_ExactMatch(t *testing.T) {
	file := "line1\nline2\nline3"
	out, n, err := UpdateText(file, "line2", "changed")
	if err != nil {
		t.Fatalf("UpdateText failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 replacement, got %d", n)
	}
	if out != "line1\nchanged\nline3" {
		t.Errorf("UpdateText() = %q", out)
	}
}

func TestUpdateText_NotFoundIsError(t *testing.T) {
	_, _, err := UpdateText("line1\nline2", "absent", "x")
	if err == nil {
		t.Fatal("Expected an error for absent search text, got nil")
	}
}

func TestUpdateText_WhitespaceInsensitive(t *testing.T) {
	file := "func main() {\n\tfmt.Println(\"hi\")  \n}"
	// Search uses different indentation and no trailing spaces.
	out, n, err := UpdateText(file, "  fmt.Println(\"hi\")", "\tfmt.Println(\"bye\")")
	if err != nil {
		t.Fatalf("UpdateText failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 replacement, got %d", n)
	}
	// The original replacement line is spliced in, not a normalized form.
	if out != "func main() {\n\tfmt.Println(\"bye\")\n}" {
		t.Errorf("UpdateText() = %q", out)
	}
}

func TestUpdateText_ReplacesAllOccurrences(t *testing.T) {
	file := "a\nx\nb\nx\nc"
	out, n, err := UpdateText(file, "x", "y")
	if err != nil {
		t.Fatalf("UpdateText failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 replacements, got %d", n)
	}
	if out != "a\ny\nb\ny\nc" {
		t.Errorf("UpdateText() = %q", out)
	}
}

func TestUpdateText_MultiLineBlock(t *testing.T) {
	file := "one\ntwo\nthree\nfour"
	out, n, err := UpdateText(file, "two\nthree", "2\n3\n3.5")
	if err != nil {
		t.Fatalf("UpdateText failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 replacement, got %d", n)
	}
	if out != "one\n2\n3\n3.5\nfour" {
		t.Errorf("UpdateText() = %q", out)
	}
}

func TestUpdateText_EmptyReplaceDeletes(t *testing.T) {
	file := "keep\ndrop\nkeep2"
	out, n, err := UpdateText(file, "drop", "")
	if err != nil {
		t.Fatalf("UpdateText failed: %v", err)
	}
	if n != 1 || out != "keep\nkeep2" {
		t.Errorf("UpdateText() = %q (n=%d)", out, n)
	}
}

// =============================================================================
// APPLIER TESTS
// =============================================================================

func newTestApplier(t *testing.T) (*Applier, string) {
	t.Helper()
	root := t.TempDir()
	return NewApplier(root), root
}

func TestApply_Add(t *testing.T) {
	a, root := newTestApplier(t)

	err := a.Apply(FilePatch{Kind: KindAdd, Path: "sub/new.txt", Content: "hello"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "sub", "new.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestApply_AddExistingConflicts(t *testing.T) {
	a, root := newTestApplier(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("original"), 0644))

	err := a.Apply(FilePatch{Kind: KindAdd, Path: "a.txt", Content: "clobber"})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// The existing file is untouched.
	data, rerr := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, rerr)
	require.Equal(t, "original", string(data))
}

func TestApply_DeleteMissingConflicts(t *testing.T) {
	a, _ := newTestApplier(t)
	err := a.Apply(FilePatch{Kind: KindDelete, Path: "nope.txt"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestApply_Move(t *testing.T) {
	a, root := newTestApplier(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "src.txt"), []byte("body"), 0644))

	err := a.Apply(FilePatch{Kind: KindMove, Path: "src.txt", To: "deep/nested/dst.txt"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "src.txt"))
	require.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(filepath.Join(root, "deep", "nested", "dst.txt"))
	require.NoError(t, err)
	require.Equal(t, "body", string(data))
}

func TestApply_ReplaceMissingConflicts(t *testing.T) {
	a, _ := newTestApplier(t)
	err := a.Apply(FilePatch{Kind: KindReplace, Path: "absent.txt", Content: "x"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestApply_Update(t *testing.T) {
	a, root := newTestApplier(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "m.go"), []byte("alpha\nbeta\ngamma"), 0644))

	err := a.Apply(FilePatch{Kind: KindUpdate, Path: "m.go", Search: "beta", Replace: "delta"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "m.go"))
	require.NoError(t, err)
	require.Equal(t, "alpha\ndelta\ngamma", string(data))
}

func TestApply_PathEscapeRejected(t *testing.T) {
	a, root := newTestApplier(t)

	tests := []string{
		"../outside.txt",
		"sub/../../outside.txt",
		"/etc/passwd",
	}
	for _, path := range tests {
		err := a.Apply(FilePatch{Kind: KindAdd, Path: path, Content: "x"})
		var escape *PathEscapeError
		if !errors.As(err, &escape) {
			t.Errorf("Apply(%q) = %v, want PathEscapeError", path, err)
		}
	}

	// Nothing appeared outside the root.
	entries, err := os.ReadDir(filepath.Dir(root))
	require.NoError(t, err)
	for _, e := range entries {
		require.NotEqual(t, "outside.txt", e.Name())
	}
}

func TestApply_SymlinkEscapeRejected(t *testing.T) {
	a, root := newTestApplier(t)
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))

	// The path is lexically inside the root but the symlink resolves
	// outside it; both an existing parent and a to-be-created subtree
	// must be caught.
	for _, path := range []string{"link/evil.txt", "link/sub/evil.txt"} {
		err := a.Apply(FilePatch{Kind: KindAdd, Path: path, Content: "escaped"})
		var escape *PathEscapeError
		if !errors.As(err, &escape) {
			t.Errorf("Apply(%q) = %v, want PathEscapeError", path, err)
		}
	}

	entries, err := os.ReadDir(outside)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestApply_MoveSymlinkEscapeRejected(t *testing.T) {
	a, root := newTestApplier(t)
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "s.txt"), []byte("x"), 0644))

	err := a.Apply(FilePatch{Kind: KindMove, Path: "s.txt", To: "link/stolen.txt"})
	var escape *PathEscapeError
	require.ErrorAs(t, err, &escape)

	// Source untouched, nothing landed outside.
	_, err = os.Stat(filepath.Join(root, "s.txt"))
	require.NoError(t, err)
	entries, err := os.ReadDir(outside)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestApply_MoveEscapingDestinationRejected(t *testing.T) {
	a, root := newTestApplier(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "s.txt"), []byte("x"), 0644))

	err := a.Apply(FilePatch{Kind: KindMove, Path: "s.txt", To: "../stolen.txt"})
	var escape *PathEscapeError
	require.ErrorAs(t, err, &escape)

	// Source still in place.
	_, err = os.Stat(filepath.Join(root, "s.txt"))
	require.NoError(t, err)
}

func TestApplyAll_IndependentFailures(t *testing.T) {
	a, root := newTestApplier(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "ok.txt"), []byte("v1"), 0644))

	results := a.ApplyAll([]FilePatch{
		{Kind: KindUpdate, Path: "missing.txt", Search: "x", Replace: "y"},
		{Kind: KindReplace, Path: "ok.txt", Content: "v2"},
	})

	require.Len(t, results, 2)
	require.False(t, results[0].OK())
	require.True(t, results[1].OK())

	data, err := os.ReadFile(filepath.Join(root, "ok.txt"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))
}
