// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn decides whose turn it is from the tail of the message
// sequence. Next is the sole control-flow authority for a session; the
// orchestrator adds no further cases.
package turn

import (
	"github.com/jeranaias/chatfile/internal/message"
)

// =============================================================================
// TURN DECISION
// =============================================================================

// Actor identifies who acts next.
type Actor int

const (
	// ActorUser means the human writes the next message.
	ActorUser Actor = iota
	// ActorAssistant means the model produces the next message.
	ActorAssistant
)

// String returns the string representation of the actor.
func (a Actor) String() string {
	switch a {
	case ActorUser:
		return "user"
	case ActorAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Turn is the decision for one step of the conversation loop.
type Turn struct {
	Actor Actor

	// NewHeading applies to user turns: whether a fresh "## user" section
	// must be appended before the user writes, or an already-empty section
	// is being re-opened.
	NewHeading bool

	// Confirm applies to assistant turns: whether the human must approve
	// before the model is invoked. Tool results always auto-continue.
	Confirm bool
}

// Next inspects the tail of the sequence and returns the next turn.
// Rules in priority order:
//  1. Empty history, or last role assistant/system: user's turn, new heading.
//  2. Last role user with empty string content: user's turn, re-open section.
//  3. Last role tool: assistant's turn, no confirmation.
//  4. Otherwise (non-empty user message): assistant's turn, confirmation.
func Next(msgs []message.Message) Turn {
	last, ok := message.Last(msgs)
	if !ok {
		return Turn{Actor: ActorUser, NewHeading: true}
	}

	switch last.Role {
	case message.RoleAssistant, message.RoleSystem:
		return Turn{Actor: ActorUser, NewHeading: true}
	case message.RoleUser:
		if last.Content.IsEmpty() {
			return Turn{Actor: ActorUser, NewHeading: false}
		}
		return Turn{Actor: ActorAssistant, Confirm: true}
	case message.RoleTool:
		return Turn{Actor: ActorAssistant, Confirm: false}
	default:
		panic("turn: unreachable role")
	}
}
