package stream

import (
	"encoding/json"
	"fmt"
	"strings"

	"flowsmith/internal/logging"
)

// Claude CLI stream-json dialect. One JSON object per line:
//
//	{"type":"system","subtype":"init","session_id":"..."}
//	{"type":"assistant","message":{"content":[{"type":"text","text":"..."}]}}
//	{"type":"content_block_delta","delta":{"type":"text_delta","text":"..."}}
//	{"type":"result","subtype":"success","result":"...","session_id":"..."}
type claudeEvent struct {
	Type      string         `json:"type"`
	Subtype   string         `json:"subtype"`
	SessionID string         `json:"session_id"`
	Result    string         `json:"result"`
	Message   *claudeMessage `json:"message"`
	Delta     *claudeDelta   `json:"delta"`
}

type claudeMessage struct {
	// Content is either a plain string or a block array.
	Content json.RawMessage `json:"content"`
}

type claudeBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Name string `json:"name"`
}

type claudeDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var claudeHandlers = map[string]eventHandler{
	"system":              handleClaudeSystem,
	"assistant":           handleClaudeAssistant,
	"content_block_delta": handleClaudeDelta,
	"result":              handleClaudeResult,
	"user":                handleClaudeUser,
}

func decodeClaude(raw []byte) (*claudeEvent, bool) {
	var ev claudeEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		logging.StreamDebug("malformed claude %s event: %v", eventType(raw), err)
		return nil, false
	}
	return &ev, true
}

func handleClaudeSystem(p *Parser, raw []byte) {
	ev, ok := decodeClaude(raw)
	if !ok {
		return
	}
	if ev.SessionID != "" {
		p.sessionID = ev.SessionID
	}
}

func handleClaudeAssistant(p *Parser, raw []byte) {
	ev, ok := decodeClaude(raw)
	if !ok || ev.Message == nil || len(ev.Message.Content) == 0 {
		return
	}

	// Plain-string content is the short form of a single text block.
	var text string
	if err := json.Unmarshal(ev.Message.Content, &text); err == nil {
		p.addText(text)
		return
	}

	var blocks []claudeBlock
	if err := json.Unmarshal(ev.Message.Content, &blocks); err != nil {
		logging.StreamDebug("unrecognized assistant content shape")
		return
	}
	for _, b := range blocks {
		switch b.Type {
		case "text":
			p.addText(b.Text)
		case "tool_use":
			p.addMarker(fmt.Sprintf("[tool: %s]\n", b.Name))
		}
	}
}

func handleClaudeDelta(p *Parser, raw []byte) {
	ev, ok := decodeClaude(raw)
	if !ok || ev.Delta == nil {
		return
	}
	p.addText(ev.Delta.Text)
}

func handleClaudeResult(p *Parser, raw []byte) {
	ev, ok := decodeClaude(raw)
	if !ok {
		return
	}
	if ev.SessionID != "" {
		p.sessionID = ev.SessionID
	}
	p.finalResult = ev.Result
	if strings.HasPrefix(ev.Subtype, "error") {
		if ev.Result != "" {
			p.streamErr = ev.Result
		} else {
			p.streamErr = ev.Subtype
		}
	}
}

// Tool result echoes; already reflected in subsequent assistant turns.
func handleClaudeUser(p *Parser, raw []byte) {}

// eventType extracts the type field for log messages.
func eventType(raw []byte) string {
	var env envelope
	if json.Unmarshal(raw, &env) == nil {
		return env.Type
	}
	return "?"
}
