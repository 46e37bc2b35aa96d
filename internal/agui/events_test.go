// ABOUTME: Tests for AG-UI event models and request validation
// ABOUTME: Covers input validation, user-message lookup, and wire-shape JSON

package agui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAgentInput_Validate(t *testing.T) {
	input := RunAgentInput{
		ThreadID: "thread-1",
		RunID:    "run-1",
		Messages: []Message{{ID: "m1", Role: RoleUser, Content: "hello"}},
	}
	require.NoError(t, input.Validate())
}

func TestRunAgentInput_Validate_MissingRunID(t *testing.T) {
	input := RunAgentInput{ThreadID: "thread-1"}
	assert.ErrorIs(t, input.Validate(), ErrMissingRunID)
}

func TestRunAgentInput_Validate_MissingRole(t *testing.T) {
	input := RunAgentInput{
		RunID:    "run-1",
		Messages: []Message{{ID: "m1", Content: "hello"}},
	}
	assert.ErrorIs(t, input.Validate(), ErrMissingRole)
}

func TestRunAgentInput_Validate_EmptyThreadIDAllowed(t *testing.T) {
	input := RunAgentInput{RunID: "run-1"}
	assert.NoError(t, input.Validate())
}

func TestLastUserContent(t *testing.T) {
	input := RunAgentInput{
		RunID: "run-1",
		Messages: []Message{
			{ID: "m1", Role: RoleUser, Content: "first"},
			{ID: "m2", Role: RoleAssistant, Content: "reply"},
			{ID: "m3", Role: RoleUser, Content: "second"},
		},
	}

	text, ok := input.LastUserContent()
	require.True(t, ok)
	assert.Equal(t, "second", text)
}

func TestLastUserContent_SkipsEmptyAndNonUser(t *testing.T) {
	input := RunAgentInput{
		RunID: "run-1",
		Messages: []Message{
			{ID: "m1", Role: RoleUser, Content: "kept"},
			{ID: "m2", Role: RoleUser, Content: ""},
			{ID: "m3", Role: RoleAssistant, Content: "reply"},
		},
	}

	text, ok := input.LastUserContent()
	require.True(t, ok)
	assert.Equal(t, "kept", text)
}

func TestLastUserContent_NoUserMessage(t *testing.T) {
	input := RunAgentInput{
		RunID:    "run-1",
		Messages: []Message{{ID: "m1", Role: RoleAssistant, Content: "hi"}},
	}

	_, ok := input.LastUserContent()
	assert.False(t, ok)
}

func TestEventConstructors_SetTypeAndTimestamp(t *testing.T) {
	started := NewRunStarted("t1", "r1")
	assert.Equal(t, EventRunStarted, started.Type())
	assert.Equal(t, "t1", started.ThreadID)
	assert.Equal(t, "r1", started.RunID)
	assert.NotZero(t, started.Timestamp)

	finished := NewRunFinished("t1", "r1")
	assert.Equal(t, EventRunFinished, finished.Type())

	runErr := NewRunError("boom", "A2A_ERROR")
	assert.Equal(t, EventRunError, runErr.Type())
	assert.Equal(t, "boom", runErr.Message)
	assert.Equal(t, "A2A_ERROR", runErr.Code)

	start := NewTextMessageStart("m1")
	assert.Equal(t, EventTextMessageStart, start.Type())
	assert.Equal(t, RoleAssistant, start.Role)

	content := NewTextMessageContent("m1", "delta")
	assert.Equal(t, EventTextMessageContent, content.Type())
	assert.Equal(t, "delta", content.Delta)

	end := NewTextMessageEnd("m1")
	assert.Equal(t, EventTextMessageEnd, end.Type())
	assert.Equal(t, "m1", end.MessageID)
}

func TestEventJSON_WireShape(t *testing.T) {
	data, err := json.Marshal(RunStartedEvent{
		EventType: EventRunStarted,
		ThreadID:  "t1",
		RunID:     "r1",
		Timestamp: 1700000000000,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"RUN_STARTED","threadId":"t1","runId":"r1","timestamp":1700000000000}`, string(data))

	data, err = json.Marshal(TextMessageContentEvent{
		EventType: EventTextMessageContent,
		MessageID: "m1",
		Delta:     "hi",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":"hi"}`, string(data))
}

func TestMessageJSON_OptionalFieldsOmitted(t *testing.T) {
	data, err := json.Marshal(Message{ID: "m1", Role: RoleUser, Content: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m1","role":"user","content":"hi"}`, string(data))
}

func TestNewMessageID_Unique(t *testing.T) {
	assert.NotEqual(t, NewMessageID(), NewMessageID())
}
