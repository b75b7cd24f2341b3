// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama is the HTTP client for the Ollama API. It streams chat
// completions over /api/chat NDJSON, surfaces model tool calls as typed
// values, and converts between the conversation's message types and the
// wire format. The client rate-limits outgoing requests and retries
// transient connection failures internally; callers only see the final
// response or error.
package ollama
