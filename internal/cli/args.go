// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Argument parsing for the chatfile command.
//
// Handles multiple flag formats consistently:
//   - Long flags: --flag value or --flag=value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: the conversation file

package cli

import (
	"fmt"
	"strings"
)

// boolFlagNames are flags that never take a value.
var boolFlagNames = map[string]bool{
	"compress":    true,
	"list-models": true,
	"version":     true,
	"help":        true,
}

// Args holds the parsed command line.
type Args struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// ParseArgs parses raw arguments. Flag values may be attached with = or
// follow as the next argument.
func ParseArgs(raw []string) (*Args, error) {
	args := &Args{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			args.positional = append(args.positional, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if name == "" {
			return nil, fmt.Errorf("invalid flag %q", arg)
		}

		if eq := strings.Index(name, "="); eq != -1 {
			args.flags[name[:eq]] = name[eq+1:]
			continue
		}

		if boolFlagNames[name] {
			args.boolFlags[name] = true
			continue
		}

		if i+1 >= len(raw) || strings.HasPrefix(raw[i+1], "-") {
			return nil, fmt.Errorf("flag --%s requires a value", name)
		}
		args.flags[name] = raw[i+1]
		i++
	}
	return args, nil
}

// Flag returns a string flag value, empty when absent.
func (a *Args) Flag(name string) string {
	return a.flags[name]
}

// BoolFlag reports whether a boolean flag was passed.
func (a *Args) BoolFlag(name string) bool {
	return a.boolFlags[name]
}

// File returns the positional conversation file argument.
func (a *Args) File() string {
	if len(a.positional) == 0 {
		return ""
	}
	return a.positional[0]
}

// Usage is the command help text.
const Usage = `chatfile - converse with a local model through an editable markdown file

Usage:
  chatfile [flags] <conversation.md>

The conversation lives in the markdown file: every "## user" section is
a message from you, "## assistant" sections come from the model, and
tool activity is recorded in fenced blocks. Edit the file, save, and the
loop continues.

Flags:
  --config <path>     Config file (default ~/.chatfile/config.toml)
  --root <dir>        Project root for file tools (default: file's directory)
  --model <name>      Override the configured model
  --url <url>         Override the Ollama URL
  --editor <cmd>      Override the editor command
  --log-level <lvl>   debug, info, warn or error
  --compress          Write compressed tool fences
  --list-models       List locally available models and exit
  --version           Print version and exit
  --help              Show this help
`
