package stream

import (
	"encoding/json"
	"strings"

	"flowsmith/internal/logging"
	"flowsmith/internal/types"
)

// eventHandler decodes and applies one wire record type. raw is the complete
// JSON line.
type eventHandler func(p *Parser, raw []byte)

// Parser consumes one backend's stdout stream. It is not safe for concurrent
// use; the supervisor delivers chunks from a single goroutine.
type Parser struct {
	asm      LineAssembler
	acc      Accumulator
	handlers map[string]eventHandler
	progress types.ProgressFunc

	sessionID   string
	finalResult string
	streamErr   string
	sawEvent    bool
}

type envelope struct {
	Type string `json:"type"`
}

// NewClaudeParser builds a parser for the Claude CLI stream-json dialect.
func NewClaudeParser(progress types.ProgressFunc) *Parser {
	return &Parser{handlers: claudeHandlers, progress: progress}
}

// NewCodexParser builds a parser for the Codex CLI experimental JSON dialect.
func NewCodexParser(progress types.ProgressFunc) *Parser {
	return &Parser{handlers: codexHandlers, progress: progress}
}

// Consume processes one raw stdout chunk. Newline-terminated lines are
// handled immediately; an unterminated tail is attempted as a complete record
// and kept buffered when it does not yet parse. A JSON object split mid-record
// can never parse as a smaller valid object, so early consumption is safe.
func (p *Parser) Consume(chunk []byte) {
	for _, line := range p.asm.Feed(chunk) {
		p.handleLine(line, true)
	}
	if tail := strings.TrimSpace(p.asm.Pending()); tail != "" {
		if p.handleLine(tail, false) {
			p.asm.DiscardPending()
		}
	}
}

// Close flushes any buffered tail as a final line. Call once after the last
// chunk.
func (p *Parser) Close() {
	if tail := strings.TrimSpace(p.asm.Pending()); tail != "" {
		p.handleLine(tail, true)
		p.asm.DiscardPending()
	}
}

// handleLine returns true when the line was consumed. terminated lines are
// consumed unconditionally (unparseable ones are logged and dropped);
// unterminated candidates are consumed only when they decode.
func (p *Parser) handleLine(line string, terminated bool) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if !strings.HasPrefix(line, "{") {
		if terminated {
			logging.StreamDebug("skipping non-JSON line: %s", types.Truncate(line, 120))
			return true
		}
		return false
	}

	var env envelope
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		if terminated {
			logging.StreamDebug("dropping unparseable line: %s", types.Truncate(line, 120))
			return true
		}
		return false
	}

	p.sawEvent = true
	if h, ok := p.handlers[env.Type]; ok {
		h(p, []byte(line))
	} else {
		logging.StreamDebug("ignoring event type %q", env.Type)
	}
	return true
}

// SessionID returns the backend-assigned continuation token, when seen.
func (p *Parser) SessionID() string { return p.sessionID }

// FinalResult returns the terminal result text, when the dialect carries one.
func (p *Parser) FinalResult() string { return p.finalResult }

// StreamErr returns an in-stream error message, when the backend reported one.
func (p *Parser) StreamErr() string { return p.streamErr }

// SawEvent reports whether at least one record decoded.
func (p *Parser) SawEvent() bool { return p.sawEvent }

// Display returns the user-facing text accumulated so far.
func (p *Parser) Display() string { return p.acc.Display() }

// Explanatory returns the extraction text accumulated so far.
func (p *Parser) Explanatory() string { return p.acc.Explanatory() }

func (p *Parser) addText(text string) {
	if text == "" {
		return
	}
	p.acc.AddText(text)
	p.emit(text, types.UpdateText)
}

func (p *Parser) addMarker(marker string) {
	p.acc.AddMarker(marker)
	p.emit(marker, types.UpdateTool)
}

func (p *Parser) emit(chunk string, kind types.UpdateKind) {
	if p.progress == nil {
		return
	}
	p.progress(types.StreamUpdate{
		Chunk:       chunk,
		Display:     p.acc.Display(),
		Explanatory: p.acc.Explanatory(),
		Kind:        kind,
	})
}
