package events

import "fmt"

// Diagnostic records a recoverable problem met while building an event from
// host input, typically a collection payload that could not be fully parsed.
// A Finished event with an empty collection and no diagnostics genuinely had
// zero results.
type Diagnostic struct {
	// Field is the wire name of the affected argument, e.g. "contacts".
	Field string
	// Index is the element position, or -1 when the whole value was rejected.
	Index int
	// Input is the offending text, truncated to a bounded length for logging.
	Input string
	// Err is the parse failure.
	Err error
}

func (d Diagnostic) String() string {
	if d.Index < 0 {
		return fmt.Sprintf("%s: %v", d.Field, d.Err)
	}
	return fmt.Sprintf("%s[%d]: %v", d.Field, d.Index, d.Err)
}

// Diagnosed is implemented by events that may carry diagnostics.
type Diagnosed interface {
	Event
	Diagnostics() []Diagnostic
}

// DiagnosticsOf returns the diagnostics attached to e, or nil.
func DiagnosticsOf(e Event) []Diagnostic {
	d, ok := e.(Diagnosed)
	if !ok {
		return nil
	}
	return d.Diagnostics()
}
