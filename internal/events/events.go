package events

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Version is bumped when the shape of an event's data changes.
const Version = 1

// Event is the envelope streamed to the page.
type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// New wraps data in an envelope stamped with the current time.
// A nil data leaves the envelope without a payload.
func New(typ string, data any) (Event, error) {
	e := Event{Type: typ, Version: Version, At: time.Now().UTC()}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return Event{}, fmt.Errorf("encode %s event: %w", typ, err)
		}
		e.Data = b
	}
	return e, nil
}

// WriteSSE writes e as one server-sent event named after its type.
func (e Event) WriteSSE(w io.Writer) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, b)
	return err
}
