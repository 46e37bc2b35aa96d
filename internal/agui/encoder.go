// ABOUTME: SSE encoder for AG-UI events
// ABOUTME: Frames each event as a self-delimiting data: {json} chunk

package agui

import (
	"encoding/json"
	"fmt"
)

// ContentType is the MIME type for the AG-UI event stream.
const ContentType = "text/event-stream"

// doneFrame terminates the stream after the final event.
var doneFrame = []byte("data: [DONE]\n\n")

// SSEEncoder serializes AG-UI events into Server-Sent Event frames.
// Each event becomes "data: {json}\n\n"; the blank line delimits events
// within the continuous byte stream. The encoder is stateless.
type SSEEncoder struct{}

// Encode serializes one event into an SSE frame.
func (SSEEncoder) Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s event: %w", ev.Type(), err)
	}
	frame := make([]byte, 0, len(data)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, data...)
	frame = append(frame, "\n\n"...)
	return frame, nil
}

// EncodeError serializes a RUN_ERROR event. It never fails: a marshal
// failure of the flat error struct is not reachable with valid UTF-8 input.
func (e SSEEncoder) EncodeError(message, code string) []byte {
	frame, err := e.Encode(NewRunError(message, code))
	if err != nil {
		return doneFrame
	}
	return frame
}

// Done returns the stream termination frame.
func (SSEEncoder) Done() []byte {
	return doneFrame
}
