// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ignore

import (
	"os"
	"sync"
	"time"
)

// Cache holds compiled patterns for one ignore file, keyed by the file's
// modification time. It is an explicit session-scoped object: callers own
// the instance, there is no package-level state.
type Cache struct {
	mu       sync.Mutex
	path     string
	modTime  time.Time
	patterns []string
	matcher  *Matcher
}

// NewCache creates a cache for the ignore file at path. The file does not
// need to exist; a missing file compiles to no patterns.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Patterns returns the compiled patterns for the ignore file, recompiling
// only when the file's modification time has changed since the last call.
func (c *Cache) Patterns() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refresh(); err != nil {
		return nil, err
	}
	return c.patterns, nil
}

// Matcher returns a matcher over the current patterns, refreshed the same
// way Patterns is.
func (c *Cache) Matcher() (*Matcher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refresh(); err != nil {
		return nil, err
	}
	return c.matcher, nil
}

func (c *Cache) refresh() error {
	info, err := os.Stat(c.path)
	if os.IsNotExist(err) {
		// Missing file: zero mtime keys the empty pattern set.
		if !c.modTime.IsZero() || c.matcher == nil {
			c.modTime = time.Time{}
			c.patterns = nil
			c.matcher = NewMatcher(nil)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if c.matcher != nil && info.ModTime().Equal(c.modTime) {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}
	c.modTime = info.ModTime()
	c.patterns = Compile(string(data))
	c.matcher = NewMatcher(c.patterns)
	return nil
}
