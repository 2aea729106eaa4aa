package stream

import "strings"

// Accumulator grows the two parallel views of a response: the display text
// shown to the user while streaming (narrative text plus synthesized
// tool-activity markers) and the explanatory text used for final response
// extraction (narrative text only).
type Accumulator struct {
	display     strings.Builder
	explanatory strings.Builder
}

// AddText appends narrative text to both views.
func (a *Accumulator) AddText(s string) {
	a.display.WriteString(s)
	a.explanatory.WriteString(s)
}

// AddMarker appends a synthesized activity marker to the display view only.
func (a *Accumulator) AddMarker(s string) {
	a.display.WriteString(s)
}

// Display returns the user-facing view accumulated so far.
func (a *Accumulator) Display() string {
	return a.display.String()
}

// Explanatory returns the extraction view accumulated so far.
func (a *Accumulator) Explanatory() string {
	return a.explanatory.String()
}
