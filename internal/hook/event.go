// Package hook implements the PreToolUse event dispatcher.
package hook

import (
	"encoding/json"
	"io"
)

// Tool names the gate understands. Anything else passes through untouched.
const (
	ToolBash  = "Bash"
	ToolWrite = "Write"
	ToolEdit  = "Edit"
)

// Event is one proposed action delivered on stdin by the agent runtime.
type Event struct {
	// ToolName identifies the intercepted tool.
	ToolName string `json:"tool_name"`
	// SessionID is the agent session, when provided.
	SessionID string `json:"session_id,omitempty"`
	// ToolInput is the tool's payload.
	ToolInput ToolInput `json:"tool_input"`
}

// ToolInput carries the payload fields the gate inspects. Fields absent
// from the wire message decode to empty strings, which classify as
// nothing-to-police.
type ToolInput struct {
	// Command is the shell command for Bash events.
	Command string `json:"command,omitempty"`
	// FilePath is the target path for Write/Edit events.
	FilePath string `json:"file_path,omitempty"`
}

// DecodeEvent reads a single JSON event.
func DecodeEvent(r io.Reader) (*Event, error) {
	var ev Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
