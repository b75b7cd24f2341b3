// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader parses an NDJSON chat stream line by line, accumulating
// text and tool calls into a final ChatResponse.
type StreamReader struct {
	reader      *bufio.Reader
	accumulator strings.Builder
	toolCalls   []ToolCall
	final       ChatResponse
}

// NewStreamReader creates a stream reader over r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Process reads the stream until the done frame or EOF, invoking callback
// for each decoded chunk. Malformed lines are skipped.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.reader.ReadBytes('\n')
		if len(line) > 0 {
			chunk := s.decodeLine(line)
			if chunk != nil {
				if callback != nil {
					callback(*chunk)
				}
				if chunk.Done {
					return nil
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// Final returns the accumulated response. Valid after Process returns nil.
func (s *StreamReader) Final() *ChatResponse {
	resp := s.final
	resp.Message.Role = "assistant"
	resp.Message.Content = s.accumulator.String()
	resp.Message.ToolCalls = s.toolCalls
	return &resp
}

func (s *StreamReader) decodeLine(line []byte) *StreamChunk {
	var frame ChatResponse
	if err := json.Unmarshal(line, &frame); err != nil {
		return nil
	}

	if frame.Message.Content != "" {
		s.accumulator.WriteString(frame.Message.Content)
	}
	if len(frame.Message.ToolCalls) > 0 {
		s.toolCalls = append(s.toolCalls, frame.Message.ToolCalls...)
	}
	if frame.Done {
		s.final = frame
	}

	return &StreamChunk{
		Content:    frame.Message.Content,
		ToolCalls:  frame.Message.ToolCalls,
		Done:       frame.Done,
		DoneReason: frame.DoneReason,
		Model:      frame.Model,
	}
}
