// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"

	"github.com/jeranaias/chatfile/internal/ollama"
	"github.com/jeranaias/chatfile/internal/tools"
)

// Editor opens the conversation file for the human and blocks until the
// editor process exits. Editors that detach immediately (GUI editors)
// return right away; the session then waits for a file write instead.
type Editor interface {
	Open(ctx context.Context, path string) error
}

// Confirmer asks the human to approve an action. preview may carry a
// diff or other detail and may be empty.
type Confirmer interface {
	Confirm(ctx context.Context, prompt, preview string) (tools.Decision, error)
}

// ModelClient is the streaming model invocation boundary.
type ModelClient interface {
	ChatStream(ctx context.Context, msgs []ollama.Message, tl []ollama.Tool, cb ollama.StreamCallback) (*ollama.ChatResponse, error)
}
