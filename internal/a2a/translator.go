// ABOUTME: Translation from A2A stream events to AG-UI front events
// ABOUTME: Pure functions over an explicit per-run state owned by the handler

package a2a

import (
	"github.com/2389/agui-gateway/internal/agui"
)

// RunState accumulates per-run translation context. The handler owns one
// RunState per run and passes it by pointer into Translate; nothing here
// is shared across runs.
type RunState struct {
	messageID string
	open      bool

	terminal bool
	failed   bool
	canceled bool
	reason   string
}

// Terminal reports whether a terminal task status has been observed.
// Events arriving after that point are ignored by Translate.
func (s *RunState) Terminal() bool { return s.terminal }

// Failure returns the RUN_ERROR code and reason when the backend reported
// a failed or canceled task.
func (s *RunState) Failure() (code, reason string, ok bool) {
	switch {
	case s.failed:
		return CodeTaskFailed, s.reason, true
	case s.canceled:
		return CodeTaskCanceled, s.reason, true
	}
	return "", "", false
}

// Translate maps one backend event to zero or more AG-UI events, updating
// state so message brackets stay well-formed: a start precedes all content
// for its id, and exactly one end closes it.
func Translate(ev StreamEvent, st *RunState) []agui.Event {
	if st.terminal {
		return nil
	}

	switch e := ev.(type) {
	case *Task:
		return translateTask(e, st)
	case *TaskStatusUpdateEvent:
		return translateStatus(e, st)
	case *TaskArtifactUpdateEvent:
		return translateArtifact(e, st)
	}
	return nil
}

// Finalize closes any message still open at the end of a run.
func Finalize(st *RunState) []agui.Event {
	return closeMessage(st)
}

func translateTask(task *Task, st *RunState) []agui.Event {
	switch task.Status.State {
	case TaskStateCompleted:
		out := closeMessage(st)
		st.terminal = true
		return out
	case TaskStateFailed:
		return markFailure(st, task.Status.Message.Text(), false)
	case TaskStateCanceled, TaskStateRejected:
		return markFailure(st, task.Status.Message.Text(), true)
	}
	return nil
}

func translateStatus(ev *TaskStatusUpdateEvent, st *RunState) []agui.Event {
	var out []agui.Event

	// Inline text in a status message streams like artifact content.
	if text := ev.Status.Message.Text(); text != "" && !ev.Status.State.Terminal() {
		out = append(out, openMessage(st)...)
		out = append(out, agui.NewTextMessageContent(st.messageID, text))
	}

	switch ev.Status.State {
	case TaskStateCompleted:
		out = append(out, closeMessage(st)...)
		st.terminal = true
	case TaskStateFailed:
		out = append(out, markFailure(st, ev.Status.Message.Text(), false)...)
	case TaskStateCanceled, TaskStateRejected:
		out = append(out, markFailure(st, ev.Status.Message.Text(), true)...)
	default:
		// submitted, working, input-required: liveness only.
		if ev.Final {
			out = append(out, closeMessage(st)...)
			st.terminal = true
		}
	}
	return out
}

func translateArtifact(ev *TaskArtifactUpdateEvent, st *RunState) []agui.Event {
	var out []agui.Event

	if !ev.Artifact.Append {
		// A non-append chunk starts a new logical message.
		out = append(out, closeMessage(st)...)
		out = append(out, openMessage(st)...)
		if text := ev.Artifact.Text(); text != "" {
			out = append(out, agui.NewTextMessageContent(st.messageID, text))
		} else {
			// Empty chunk still brackets: start then immediate end.
			out = append(out, closeMessage(st)...)
		}
		return out
	}

	// Append continues the open message; an append with nothing open is
	// treated as the first content for a new id.
	if text := ev.Artifact.Text(); text != "" {
		out = append(out, openMessage(st)...)
		out = append(out, agui.NewTextMessageContent(st.messageID, text))
	}
	return out
}

// openMessage emits a start event unless a message is already open.
func openMessage(st *RunState) []agui.Event {
	if st.open {
		return nil
	}
	st.messageID = agui.NewMessageID()
	st.open = true
	return []agui.Event{agui.NewTextMessageStart(st.messageID)}
}

// closeMessage emits an end event for the open message, if any.
func closeMessage(st *RunState) []agui.Event {
	if !st.open {
		return nil
	}
	st.open = false
	return []agui.Event{agui.NewTextMessageEnd(st.messageID)}
}

// markFailure closes any open message and records the failure for the
// handler's terminal RUN_ERROR event.
func markFailure(st *RunState, reason string, canceled bool) []agui.Event {
	out := closeMessage(st)
	st.terminal = true
	if canceled {
		st.canceled = true
		if reason == "" {
			reason = "task canceled by agent"
		}
	} else {
		st.failed = true
		if reason == "" {
			reason = "task failed"
		}
	}
	st.reason = reason
	return out
}
