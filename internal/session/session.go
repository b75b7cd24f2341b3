// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/jeranaias/chatfile/internal/chatmd"
	"github.com/jeranaias/chatfile/internal/message"
	"github.com/jeranaias/chatfile/internal/ollama"
	"github.com/jeranaias/chatfile/internal/tools"
	"github.com/jeranaias/chatfile/internal/turn"
	"github.com/jeranaias/chatfile/internal/util"
)

// =============================================================================
// SESSION
// =============================================================================

// Session drives one conversation file.
type Session struct {
	// File is the conversation markdown file.
	File string

	// Compress enables compressed tool fences when serializing.
	Compress bool

	// SystemPrompt seeds new conversation files, empty for none.
	SystemPrompt string

	// Collaborators.
	Model     ModelClient
	Editor    Editor
	Confirmer Confirmer
	Executor  *tools.Executor

	// OnChunk receives streaming model text for display, may be nil.
	OnChunk func(text string)

	// OnAssistantDone receives the complete assistant text once the
	// stream finishes, may be nil.
	OnAssistantDone func(text string)

	Log zerolog.Logger
}

// Run loops until the context is cancelled, the human declines to
// continue, or a collaborator fails. The file on disk always reflects
// the last completed step.
func (s *Session) Run(ctx context.Context) error {
	if err := s.ensureFile(); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msgs, err := s.read()
		if err != nil {
			return err
		}

		t := turn.Next(msgs)
		s.Log.Debug().
			Str("actor", t.Actor.String()).
			Bool("new_heading", t.NewHeading).
			Bool("confirm", t.Confirm).
			Int("messages", len(msgs)).
			Msg("turn decided")

		switch t.Actor {
		case turn.ActorUser:
			if err := s.userTurn(ctx, t.NewHeading); err != nil {
				return err
			}
		case turn.ActorAssistant:
			if t.Confirm {
				dec, err := s.Confirmer.Confirm(ctx, "Send conversation to the model?", "")
				if err != nil {
					return fmt.Errorf("confirmation failed: %w", err)
				}
				if dec == tools.DecisionDeny {
					s.Log.Info().Msg("session ended by user")
					return nil
				}
			}
			if err := s.assistantTurn(ctx, msgs); err != nil {
				return err
			}
		}
	}
}

// =============================================================================
// FILE ACCESS
// =============================================================================

// ensureFile creates the conversation file when missing, seeded with the
// system prompt if one is configured.
func (s *Session) ensureFile() error {
	if _, err := os.Stat(s.File); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	var msgs []message.Message
	if s.SystemPrompt != "" {
		msgs = append(msgs, message.NewSystemMessage(s.SystemPrompt))
	}
	return s.write(msgs)
}

// read parses the file fresh; the conversation is never cached across
// turns.
func (s *Session) read() ([]message.Message, error) {
	data, err := os.ReadFile(s.File)
	if err != nil {
		return nil, err
	}
	msgs, err := chatmd.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("conversation file %s: %w", s.File, err)
	}
	return msgs, nil
}

func (s *Session) write(msgs []message.Message) error {
	text, err := chatmd.Serialize(msgs, s.Compress)
	if err != nil {
		return fmt.Errorf("serialize conversation: %w", err)
	}
	return util.AtomicWriteFile(s.File, []byte(text), 0644)
}

// =============================================================================
// USER TURN
// =============================================================================

// userTurn appends a fresh user heading when needed, opens the editor,
// and waits for the file to actually change if the editor detached
// without blocking.
func (s *Session) userTurn(ctx context.Context, newHeading bool) error {
	if newHeading {
		if err := s.appendUserHeading(); err != nil {
			return err
		}
	}

	before, err := os.ReadFile(s.File)
	if err != nil {
		return err
	}

	if err := s.Editor.Open(ctx, s.File); err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}

	after, err := os.ReadFile(s.File)
	if err != nil {
		return err
	}
	if string(after) == string(before) {
		s.Log.Debug().Msg("file unchanged after editor, waiting for write")
		if err := waitForWrite(ctx, s.File); err != nil {
			return err
		}
	}
	return nil
}

// appendUserHeading adds the next "## user" section textually, without
// re-serializing, so any hand-written layout in the file survives until
// the next model turn.
func (s *Session) appendUserHeading() error {
	data, err := os.ReadFile(s.File)
	if err != nil {
		return err
	}
	text := string(data)
	if text != "" && text[len(text)-1] != '\n' {
		text += "\n"
	}
	if text != "" {
		text += "\n"
	}
	text += "## user\n\n"
	return util.AtomicWriteFile(s.File, []byte(text), 0644)
}

// =============================================================================
// ASSISTANT TURN
// =============================================================================

// assistantTurn streams a model response, appends the assistant message,
// then executes any tool calls and appends their results. Each append
// rewrites the file so an aborted step leaves the previous state intact.
func (s *Session) assistantTurn(ctx context.Context, msgs []message.Message) error {
	wire := ollama.ToWire(msgs)
	schema := ollama.ToolsToWire(s.Executor.Registry())

	resp, err := s.Model.ChatStream(ctx, wire, schema, func(chunk ollama.StreamChunk) {
		if s.OnChunk != nil && chunk.Content != "" {
			s.OnChunk(chunk.Content)
		}
	})
	if err != nil {
		return fmt.Errorf("model invocation failed: %w", err)
	}
	s.Log.Debug().
		Int("tool_calls", len(resp.Message.ToolCalls)).
		Str("reply", util.TruncateRunes(util.FirstLine(resp.Message.Content), 80)).
		Msg("model response received")

	var parts []message.Part
	if resp.Message.Content != "" {
		parts = append(parts, message.TextPart{Text: resp.Message.Content})
		if s.OnAssistantDone != nil {
			s.OnAssistantDone(resp.Message.Content)
		}
	}
	callParts := ollama.ToolCallParts(resp.Message.ToolCalls)
	parts = append(parts, callParts...)

	msgs = append(msgs, message.NewAssistantMessage(parts))
	if err := s.write(msgs); err != nil {
		return err
	}

	if len(callParts) == 0 {
		return nil
	}

	results := make([]message.ToolResultPart, 0, len(callParts))
	for _, p := range callParts {
		call := p.(message.ToolCallPart)
		res := s.Executor.Execute(ctx, call.ToolName, call.Args)
		results = append(results, message.ToolResultPart{
			ToolCallID: call.ToolCallID,
			ToolName:   call.ToolName,
			Result:     res.Payload(),
		})
	}

	msgs = append(msgs, message.NewToolMessage(results))
	return s.write(msgs)
}
