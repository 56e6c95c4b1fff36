// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// writer and reader for the chat streaming endpoint. The writer frames JSON
// payloads as data-only events; the reader parses such a stream back into
// events on the client side.
//
// This package intentionally does NOT provide a full SSE server; reconnect
// handling and retry fields are out of scope.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single parsed SSE event, delimited by a blank line
// in the byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}
