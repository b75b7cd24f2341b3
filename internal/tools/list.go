// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/jeranaias/chatfile/internal/ignore"
	"github.com/jeranaias/chatfile/internal/util"
)

// maxListedFiles caps list_files output so a huge tree cannot flood the
// model's context.
const maxListedFiles = 2000

// ListFilesTool lists project files under root, honoring the ignore
// rules compiled from the project's ignore file.
func ListFilesTool(root string, cache *ignore.Cache) *Tool {
	return &Tool{
		Name:        "list_files",
		Description: "List project files. Respects ignore rules. Optional glob pattern filters by file name.",
		Schema: Schema{Parameters: []Parameter{
			{Name: "pattern", Type: "string", Required: false, Description: "Glob pattern matched against file names, e.g. *.go"},
		}},
		Permission: PermissionAuto,
		Executor:   &listFilesExecutor{root: root, cache: cache},
	}
}

type listFilesExecutor struct {
	root  string
	cache *ignore.Cache
}

func (l *listFilesExecutor) Execute(ctx context.Context, params map[string]any) (Result, error) {
	pattern, _ := params["pattern"].(string)

	matcher, err := l.cache.Matcher()
	if err != nil {
		return Result{Success: false, Error: "ignore rules: " + err.Error()}, nil
	}

	var files []string
	truncated := false
	walkErr := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(l.root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || matcher.Excluded(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if matcher.Excluded(rel) {
			return nil
		}
		if pattern != "" {
			if ok, _ := path.Match(pattern, path.Base(rel)); !ok {
				return nil
			}
		}
		if len(files) >= maxListedFiles {
			truncated = true
			return fs.SkipAll
		}
		files = append(files, rel)
		return nil
	})
	if walkErr != nil {
		return Result{Success: false, Error: walkErr.Error()}, nil
	}

	output := strings.Join(files, "\n")
	if truncated {
		output += "\n(truncated at " + util.IntToStr(maxListedFiles) + " files)"
	}
	return Result{Success: true, Output: output}, nil
}
