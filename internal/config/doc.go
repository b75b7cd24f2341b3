// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads chatfile configuration: TOML file with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file location (in order of precedence):
//   - path given on the command line
//   - ~/.chatfile/config.toml
//   - built-in defaults
package config
