// ABOUTME: A2A protocol models for task-execution backends
// ABOUTME: Defines task states, stream events, and the JSON-RPC request envelope

package a2a

import (
	"encoding/json"

	"github.com/google/uuid"
)

// TaskState is the lifecycle state reported by an A2A task.
type TaskState string

// A2A task states.
const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateFailed        TaskState = "failed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateRejected      TaskState = "rejected"
)

// UnmarshalJSON accepts both the "canceled" and "cancelled" spellings
// backends use for the canceled state.
func (s *TaskState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "cancelled" {
		raw = string(TaskStateCanceled)
	}
	*s = TaskState(raw)
	return nil
}

// Terminal reports whether the state ends the task.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateRejected:
		return true
	}
	return false
}

// MessageRole is the author role of an A2A message.
type MessageRole string

// A2A message roles.
const (
	RoleUser  MessageRole = "user"
	RoleAgent MessageRole = "agent"
)

// Part is one content part of a message or artifact. Only text parts are
// interpreted; other kinds pass through undecoded.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) Part {
	return Part{Type: "text", Text: text}
}

// Message is an A2A protocol message.
type Message struct {
	Role      MessageRole `json:"role"`
	Parts     []Part      `json:"parts"`
	MessageID string      `json:"messageId"`
}

// Text concatenates the message's text parts.
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	var out string
	for _, p := range m.Parts {
		if p.Type == "text" {
			out += p.Text
		}
	}
	return out
}

// TaskStatus carries the current state and an optional status message.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Artifact is a named, possibly incremental content block produced by a task.
// Append marks the update as a continuation of the previous artifact chunk.
type Artifact struct {
	ArtifactID string `json:"artifactId"`
	Name       string `json:"name,omitempty"`
	Parts      []Part `json:"parts"`
	Index      int    `json:"index,omitempty"`
	Append     bool   `json:"append,omitempty"`
	LastChunk  bool   `json:"lastChunk,omitempty"`
}

// Text concatenates the artifact's text parts.
func (a *Artifact) Text() string {
	var out string
	for _, p := range a.Parts {
		if p.Type == "text" {
			out += p.Text
		}
	}
	return out
}

// StreamEvent is the closed set of events an A2A backend yields while
// streaming. Only types in this package implement it.
type StreamEvent interface {
	streamEvent()
}

// Task is the initial task object a backend may send before updates.
type Task struct {
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
}

// TaskStatusUpdateEvent reports a task state change. Final marks the last
// update of the stream.
type TaskStatusUpdateEvent struct {
	Kind      string     `json:"kind"`
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Final     bool       `json:"final,omitempty"`
}

// TaskArtifactUpdateEvent delivers an artifact chunk.
type TaskArtifactUpdateEvent struct {
	Kind      string   `json:"kind"`
	TaskID    string   `json:"taskId"`
	ContextID string   `json:"contextId"`
	Artifact  Artifact `json:"artifact"`
}

func (*Task) streamEvent()                    {}
func (*TaskStatusUpdateEvent) streamEvent()   {}
func (*TaskArtifactUpdateEvent) streamEvent() {}

// StreamRequest is the JSON-RPC 2.0 envelope for message/stream calls.
type StreamRequest struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      string       `json:"id"`
	Method  string       `json:"method"`
	Params  StreamParams `json:"params"`
}

// StreamParams carries the message and conversation identifiers.
type StreamParams struct {
	Message   Message `json:"message"`
	ContextID string  `json:"contextId"`
	TaskID    string  `json:"taskId"`
}

// NewStreamRequest builds a message/stream request for one forwarded message.
func NewStreamRequest(contextID, taskID string, msg Message) StreamRequest {
	return StreamRequest{
		JSONRPC: "2.0",
		ID:      uuid.New().String(),
		Method:  "message/stream",
		Params: StreamParams{
			Message:   msg,
			ContextID: contextID,
			TaskID:    taskID,
		},
	}
}

// rpcEnvelope is the JSON-RPC response wrapper backends put around events.
type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// eventProbe peeks at the discriminator fields of a raw event object.
type eventProbe struct {
	Kind   string          `json:"kind"`
	TaskID string          `json:"taskId"`
	Status json.RawMessage `json:"status"`
}

// ParseEvent decodes one SSE data payload into a typed stream event.
// Payloads may arrive wrapped in a JSON-RPC result envelope or bare.
// Objects carrying taskId and status that are not a recognized update
// kind decode as a Task. A syntactically valid object matching nothing
// returns (nil, nil) so callers can skip it; malformed JSON returns a
// ProtocolError.
func ParseEvent(data []byte) (StreamEvent, error) {
	var env rpcEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ProtocolError{Message: "malformed event frame", Err: err}
	}
	obj := data
	if len(env.Result) > 0 {
		obj = env.Result
	}

	var probe eventProbe
	if err := json.Unmarshal(obj, &probe); err != nil {
		return nil, &ProtocolError{Message: "malformed event object", Err: err}
	}

	switch {
	case probe.Kind == "status-update":
		var ev TaskStatusUpdateEvent
		if err := json.Unmarshal(obj, &ev); err != nil {
			return nil, &ProtocolError{Message: "malformed status-update", Err: err}
		}
		return &ev, nil
	case probe.Kind == "artifact-update":
		var ev TaskArtifactUpdateEvent
		if err := json.Unmarshal(obj, &ev); err != nil {
			return nil, &ProtocolError{Message: "malformed artifact-update", Err: err}
		}
		return &ev, nil
	case probe.TaskID != "" && len(probe.Status) > 0:
		// Task objects arrive bare or stamped "kind":"task".
		var task Task
		if err := json.Unmarshal(obj, &task); err != nil {
			return nil, &ProtocolError{Message: "malformed task object", Err: err}
		}
		return &task, nil
	}
	return nil, nil
}

// ConvertMessage converts forwarded text into the A2A message shape.
func ConvertMessage(text string) Message {
	return Message{
		Role:      RoleUser,
		Parts:     []Part{TextPart(text)},
		MessageID: uuid.New().String(),
	}
}
