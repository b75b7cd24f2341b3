// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatmd is the bidirectional codec between the conversation file
// (human-editable markdown) and the typed message sequence.
//
// A level-2 heading reading system/user/assistant/tool opens a section for
// that role. Inside a section, fenced blocks tagged tool-call / tool-result
// (or their -compressed variants) decode to structured parts; everything
// else is carried as the exact original text slice so arbitrary embedded
// markdown survives byte-for-byte.
//
// The round-trip law governs the whole package: for every message sequence
// the serializer can produce, Parse(Serialize(m)) deep-equals m.
package chatmd
