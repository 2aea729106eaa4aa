// Package stream decodes the newline-delimited JSON wire protocols spoken by
// the CLI backends. Chunks arrive at arbitrary byte offsets; the assembler
// reconstructs records regardless of where the transport split them.
package stream

import (
	"bytes"
	"strings"
)

// LineAssembler buffers raw chunks and yields newline-terminated lines.
// Unterminated bytes stay buffered until more input arrives; callers may
// inspect the pending tail and consume it early once it forms a complete
// record on its own.
type LineAssembler struct {
	buf []byte
}

// Feed appends chunk and returns every newline-terminated line it completes,
// in order, with line endings (including CR from CRLF) stripped.
func (a *LineAssembler) Feed(chunk []byte) []string {
	a.buf = append(a.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(a.buf, '\n')
		if i < 0 {
			return lines
		}
		line := strings.TrimSuffix(string(a.buf[:i]), "\r")
		a.buf = a.buf[i+1:]
		lines = append(lines, line)
	}
}

// Pending returns the unterminated tail still buffered.
func (a *LineAssembler) Pending() string {
	return string(a.buf)
}

// DiscardPending drops the buffered tail after a caller consumed it.
func (a *LineAssembler) DiscardPending() {
	a.buf = a.buf[:0]
}
