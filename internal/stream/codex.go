package stream

import (
	"encoding/json"
	"fmt"

	"flowsmith/internal/logging"
)

// Codex CLI experimental JSON dialect (codex exec --json). One object per
// line:
//
//	{"type":"thread.started","thread_id":"..."}
//	{"type":"item.started","item":{"item_type":"command_execution","command":"ls"}}
//	{"type":"item.completed","item":{"item_type":"agent_message","text":"..."}}
//	{"type":"turn.completed","usage":{...}}
//	{"type":"error","message":"..."}
type codexEvent struct {
	Type     string      `json:"type"`
	ThreadID string      `json:"thread_id"`
	Item     *codexItem  `json:"item"`
	Error    *codexError `json:"error"`
	Message  string      `json:"message"`
}

type codexItem struct {
	ID       string `json:"id"`
	ItemType string `json:"item_type"`
	Text     string `json:"text"`
	Command  string `json:"command"`
	Server   string `json:"server"`
	Tool     string `json:"tool"`
}

type codexError struct {
	Message string `json:"message"`
}

var codexHandlers = map[string]eventHandler{
	"thread.started": handleCodexThreadStarted,
	"item.started":   handleCodexItemStarted,
	"item.completed": handleCodexItemCompleted,
	"turn.started":   handleCodexTurn,
	"turn.completed": handleCodexTurn,
	"turn.failed":    handleCodexTurnFailed,
	"error":          handleCodexError,
}

func decodeCodex(raw []byte) (*codexEvent, bool) {
	var ev codexEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		logging.StreamDebug("malformed codex %s event: %v", eventType(raw), err)
		return nil, false
	}
	return &ev, true
}

func handleCodexThreadStarted(p *Parser, raw []byte) {
	ev, ok := decodeCodex(raw)
	if !ok {
		return
	}
	if ev.ThreadID != "" {
		p.sessionID = ev.ThreadID
	}
}

// Activity markers go out when an item starts so the user sees tool use as it
// happens, not after it finishes.
func handleCodexItemStarted(p *Parser, raw []byte) {
	ev, ok := decodeCodex(raw)
	if !ok || ev.Item == nil {
		return
	}
	switch ev.Item.ItemType {
	case "command_execution":
		p.addMarker(fmt.Sprintf("[exec: %s]\n", ev.Item.Command))
	case "mcp_tool_call":
		p.addMarker(fmt.Sprintf("[tool: %s.%s]\n", ev.Item.Server, ev.Item.Tool))
	}
}

// Text is only reliable once the item completes; emitting on start too would
// duplicate it. Items without a recognized type still surface their text,
// which may itself be a JSON envelope destined for the extractor.
func handleCodexItemCompleted(p *Parser, raw []byte) {
	ev, ok := decodeCodex(raw)
	if !ok || ev.Item == nil {
		return
	}
	switch ev.Item.ItemType {
	case "command_execution", "mcp_tool_call":
		// Activity was already marked when the item started.
	default:
		if ev.Item.Text != "" {
			p.addText(ev.Item.Text + "\n")
		}
	}
}

func handleCodexTurn(p *Parser, raw []byte) {}

func handleCodexTurnFailed(p *Parser, raw []byte) {
	ev, ok := decodeCodex(raw)
	if !ok {
		return
	}
	if ev.Error != nil && ev.Error.Message != "" {
		p.streamErr = ev.Error.Message
	} else {
		p.streamErr = "turn failed"
	}
}

func handleCodexError(p *Parser, raw []byte) {
	ev, ok := decodeCodex(raw)
	if !ok {
		return
	}
	if ev.Message != "" {
		p.streamErr = ev.Message
	}
}
