package sse

import (
	"encoding/json"
	"fmt"
	"io"
)

// Writer frames payloads as data-only SSE events on an underlying stream,
// one "data: <json>" line followed by a blank line per event.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer framing events onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteData marshals v to JSON and writes it as a single SSE event. A write
// error usually means the client went away.
func (w *Writer) WriteData(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling event payload: %w", err)
	}

	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	return nil
}
