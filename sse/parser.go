// Package sse implements an incremental scanner for the text/event-stream
// wire format: blank-line-delimited blocks of "field: value" lines, tolerant
// of chunk boundaries that split a line or a block across reads.
package sse

import "strings"

// Event is one decoded event block.
type Event struct {
	// Name is the value of the block's "event:" field, empty when absent.
	Name string

	// Data is the block's data payload. Multiple "data:" lines are joined
	// with a newline, per the multi-line-data convention.
	Data string
}

// Parser assembles events from an incrementally delivered text stream.
// Feed it decoded chunks as they arrive; it returns zero or more complete
// events per call and carries partial lines and partial blocks across calls.
//
// The scanner dispatches identical event sequences regardless of where
// chunk boundaries fall. A Parser belongs to exactly one stream and is not
// safe for concurrent use.
type Parser struct {
	// buf is the not-yet-terminated tail carried across Feed calls.
	buf string

	// Per-block accumulators, reset after each dispatch.
	name    string
	data    []string
	haveAny bool
}

// NewParser returns a Parser with empty state.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends a decoded chunk and returns the events completed by it.
func (p *Parser) Feed(chunk string) []Event {
	p.buf += chunk

	parts := strings.Split(p.buf, "\n")
	// The final segment may be an incomplete line; keep it buffered.
	p.buf = parts[len(parts)-1]

	var events []Event
	for _, line := range parts[:len(parts)-1] {
		if ev, ok := p.feedLine(line); ok {
			events = append(events, ev)
		}
	}
	return events
}

// Close flushes end-of-input state: a non-empty trailing buffer is treated
// as a final line, and any pending block is dispatched even without a
// trailing blank line. Defends against servers that omit the terminator.
func (p *Parser) Close() []Event {
	var events []Event

	if p.buf != "" {
		line := p.buf
		p.buf = ""
		if ev, ok := p.feedLine(line); ok {
			events = append(events, ev)
		}
	}

	if p.haveAny {
		events = append(events, p.flush())
	}
	return events
}

// feedLine processes one complete line. It returns a dispatched event when
// the line terminates a non-empty block.
func (p *Parser) feedLine(line string) (Event, bool) {
	line = strings.TrimSuffix(line, "\r")

	// Blank line terminates the current block.
	if line == "" {
		if !p.haveAny {
			return Event{}, false
		}
		return p.flush(), true
	}

	// Comment lines are ignored per the wire format.
	if strings.HasPrefix(line, ":") {
		return Event{}, false
	}

	field, value, ok := splitField(line)
	if !ok {
		// Lines with no colon carry no field; ignored.
		return Event{}, false
	}

	switch field {
	case "event":
		p.name = value
		p.haveAny = true
	case "data":
		p.data = append(p.data, value)
		p.haveAny = true
	case "id", "retry":
		// Recognized by the format but not used by this client.
	default:
		// Unrecognized field names are ignored.
	}
	return Event{}, false
}

// flush returns the pending block and resets the per-block accumulators.
func (p *Parser) flush() Event {
	ev := Event{
		Name: p.name,
		Data: strings.Join(p.data, "\n"),
	}
	p.name = ""
	p.data = nil
	p.haveAny = false
	return ev
}

// splitField decodes one "field: value" line. A single leading space after
// the colon is stripped; further spaces are payload.
func splitField(line string) (field, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}

	field = line[:idx]
	value = line[idx+1:]
	value = strings.TrimPrefix(value, " ")
	return field, value, true
}
