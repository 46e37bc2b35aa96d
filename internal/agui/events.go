// ABOUTME: AG-UI protocol event types and request models
// ABOUTME: Defines the closed set of front-protocol events streamed to UI clients

package agui

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType identifies an AG-UI event variant.
type EventType string

// AG-UI event types.
const (
	EventRunStarted  EventType = "RUN_STARTED"
	EventRunFinished EventType = "RUN_FINISHED"
	EventRunError    EventType = "RUN_ERROR"

	EventTextMessageStart   EventType = "TEXT_MESSAGE_START"
	EventTextMessageContent EventType = "TEXT_MESSAGE_CONTENT"
	EventTextMessageEnd     EventType = "TEXT_MESSAGE_END"

	EventToolCallStart EventType = "TOOL_CALL_START"
	EventToolCallArgs  EventType = "TOOL_CALL_ARGS"
	EventToolCallEnd   EventType = "TOOL_CALL_END"
)

// Role is the author role of an AG-UI message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is a single conversation message in a RunAgentInput.
type Message struct {
	ID         string `json:"id"`
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	Name       string `json:"name,omitempty"`
	ToolCallID string `json:"toolCallId,omitempty"`
}

// RunAgentInput is the inbound request body for one run.
// ThreadID may be empty; the handler generates one in that case.
type RunAgentInput struct {
	ThreadID string    `json:"threadId"`
	RunID    string    `json:"runId"`
	Messages []Message `json:"messages"`
}

// Input validation errors.
var (
	ErrMissingRunID = errors.New("runId is required")
	ErrMissingRole  = errors.New("message role is required")
)

// Validate checks that the input carries the fields the handler depends on.
func (in *RunAgentInput) Validate() error {
	if in.RunID == "" {
		return ErrMissingRunID
	}
	for _, m := range in.Messages {
		if m.Role == "" {
			return ErrMissingRole
		}
	}
	return nil
}

// LastUserContent returns the content of the most recent user message,
// or ("", false) if the input contains no user message with content.
func (in *RunAgentInput) LastUserContent() (string, bool) {
	for i := len(in.Messages) - 1; i >= 0; i-- {
		if in.Messages[i].Role == RoleUser && in.Messages[i].Content != "" {
			return in.Messages[i].Content, true
		}
	}
	return "", false
}

// Event is the closed set of AG-UI events. Only types in this package
// implement it.
type Event interface {
	Type() EventType
}

// RunStartedEvent signals that request processing has begun.
type RunStartedEvent struct {
	EventType EventType `json:"type"`
	ThreadID  string    `json:"threadId"`
	RunID     string    `json:"runId"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// RunFinishedEvent signals that the run completed normally.
type RunFinishedEvent struct {
	EventType EventType `json:"type"`
	ThreadID  string    `json:"threadId"`
	RunID     string    `json:"runId"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// RunErrorEvent signals that the run ended with an error.
type RunErrorEvent struct {
	EventType EventType `json:"type"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// TextMessageStartEvent opens a new text message block.
type TextMessageStartEvent struct {
	EventType EventType `json:"type"`
	MessageID string    `json:"messageId"`
	Role      Role      `json:"role"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// TextMessageContentEvent appends a text delta to an open message.
type TextMessageContentEvent struct {
	EventType EventType `json:"type"`
	MessageID string    `json:"messageId"`
	Delta     string    `json:"delta"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// TextMessageEndEvent closes an open text message block.
type TextMessageEndEvent struct {
	EventType EventType `json:"type"`
	MessageID string    `json:"messageId"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// ToolCallStartEvent opens a tool call.
type ToolCallStartEvent struct {
	EventType       EventType `json:"type"`
	ToolCallID      string    `json:"toolCallId"`
	ToolCallName    string    `json:"toolCallName"`
	ParentMessageID string    `json:"parentMessageId,omitempty"`
	Timestamp       int64     `json:"timestamp,omitempty"`
}

// ToolCallArgsEvent streams tool call arguments.
type ToolCallArgsEvent struct {
	EventType  EventType `json:"type"`
	ToolCallID string    `json:"toolCallId"`
	Delta      string    `json:"delta"`
	Timestamp  int64     `json:"timestamp,omitempty"`
}

// ToolCallEndEvent closes a tool call.
type ToolCallEndEvent struct {
	EventType  EventType `json:"type"`
	ToolCallID string    `json:"toolCallId"`
	Timestamp  int64     `json:"timestamp,omitempty"`
}

func (e RunStartedEvent) Type() EventType         { return e.EventType }
func (e RunFinishedEvent) Type() EventType        { return e.EventType }
func (e RunErrorEvent) Type() EventType           { return e.EventType }
func (e TextMessageStartEvent) Type() EventType   { return e.EventType }
func (e TextMessageContentEvent) Type() EventType { return e.EventType }
func (e TextMessageEndEvent) Type() EventType     { return e.EventType }
func (e ToolCallStartEvent) Type() EventType      { return e.EventType }
func (e ToolCallArgsEvent) Type() EventType       { return e.EventType }
func (e ToolCallEndEvent) Type() EventType        { return e.EventType }

// Now returns the current timestamp in milliseconds, the unit AG-UI
// events carry on the wire.
func Now() int64 {
	return time.Now().UnixMilli()
}

// NewMessageID generates a fresh message identifier.
func NewMessageID() string {
	return uuid.New().String()
}

// NewRunStarted builds a RUN_STARTED event stamped with the current time.
func NewRunStarted(threadID, runID string) RunStartedEvent {
	return RunStartedEvent{EventType: EventRunStarted, ThreadID: threadID, RunID: runID, Timestamp: Now()}
}

// NewRunFinished builds a RUN_FINISHED event stamped with the current time.
func NewRunFinished(threadID, runID string) RunFinishedEvent {
	return RunFinishedEvent{EventType: EventRunFinished, ThreadID: threadID, RunID: runID, Timestamp: Now()}
}

// NewRunError builds a RUN_ERROR event stamped with the current time.
func NewRunError(message, code string) RunErrorEvent {
	return RunErrorEvent{EventType: EventRunError, Message: message, Code: code, Timestamp: Now()}
}

// NewTextMessageStart builds a TEXT_MESSAGE_START event for an assistant message.
func NewTextMessageStart(messageID string) TextMessageStartEvent {
	return TextMessageStartEvent{EventType: EventTextMessageStart, MessageID: messageID, Role: RoleAssistant, Timestamp: Now()}
}

// NewTextMessageContent builds a TEXT_MESSAGE_CONTENT event.
func NewTextMessageContent(messageID, delta string) TextMessageContentEvent {
	return TextMessageContentEvent{EventType: EventTextMessageContent, MessageID: messageID, Delta: delta, Timestamp: Now()}
}

// NewTextMessageEnd builds a TEXT_MESSAGE_END event.
func NewTextMessageEnd(messageID string) TextMessageEndEvent {
	return TextMessageEndEvent{EventType: EventTextMessageEnd, MessageID: messageID, Timestamp: Now()}
}
