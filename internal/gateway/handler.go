// ABOUTME: Orchestration handler bridging AG-UI requests to A2A backend streams
// ABOUTME: Owns the per-run lifecycle: routing, streaming, translation, and closure

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/2389/agui-gateway/internal/a2a"
	"github.com/2389/agui-gateway/internal/agui"
	"github.com/2389/agui-gateway/internal/metrics"
)

// errClientGone aborts a run when the outbound stream can no longer be
// written; nobody is listening, so no terminal event is attempted.
var errClientGone = errors.New("client disconnected")

// handleChat handles POST /api/agui/chat. It accepts a RunAgentInput JSON
// body and streams AG-UI events back as SSE until the run reaches its
// terminal event.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input agui.RunAgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := input.Validate(); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Check streaming support before committing to SSE (fail fast)
	flusher, ok := w.(http.Flusher)
	if !ok {
		g.logger.Error("streaming not supported")
		g.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	threadID := input.ThreadID
	if threadID == "" {
		threadID = uuid.New().String()
	}

	g.logger.Info("run accepted",
		"run_id", input.RunID,
		"thread_id", threadID,
		"messages", len(input.Messages),
	)

	w.Header().Set("Content-Type", agui.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rn := &run{
		gateway:  g,
		input:    &input,
		threadID: threadID,
		w:        w,
		flusher:  flusher,
		logger:   g.logger.With("run_id", input.RunID),
	}
	rn.execute(r.Context())
}

// run is one end-to-end bridged execution. It is owned by a single request
// goroutine and never shared across runs.
type run struct {
	gateway  *Gateway
	input    *agui.RunAgentInput
	threadID string
	w        http.ResponseWriter
	flusher  http.Flusher
	logger   *slog.Logger

	enc   agui.SSEEncoder
	state a2a.RunState
}

// execute drives the run state machine: RUN_STARTED is written before
// routing so the caller sees liveness immediately, then the decision either
// short-circuits to an empty run or opens a backend stream. Exactly one
// terminal event closes the stream unless the client disconnected first.
func (rn *run) execute(ctx context.Context) {
	if err := rn.writeEvent(agui.NewRunStarted(rn.threadID, rn.input.RunID)); err != nil {
		return
	}

	text, ok := rn.input.LastUserContent()
	if !ok {
		rn.finishEmpty("no user message content")
		return
	}

	decision := rn.gateway.router.Select(text)
	if decision.Empty {
		rn.finishEmpty("route rewrote message to empty content")
		return
	}

	rn.streamFromBackend(ctx, decision)
}

// finishEmpty closes an empty run: no backend is contacted and the outbound
// stream is exactly [RUN_STARTED, RUN_FINISHED].
func (rn *run) finishEmpty(reason string) {
	rn.logger.Info("empty run, skipping backend call", "reason", reason)
	if err := rn.writeEvent(agui.NewRunFinished(rn.threadID, rn.input.RunID)); err != nil {
		return
	}
	rn.writeDone()
	rn.gateway.metrics.ObserveRun("none", metrics.OutcomeFinished)
}

// streamFromBackend opens the A2A stream and pumps events through the
// translator onto the outbound stream, in order, until the sequence ends.
func (rn *run) streamFromBackend(ctx context.Context, decision RouteDecision) {
	target := decision.Target
	rn.logger.Info("dispatching to A2A agent",
		"target", target.Name,
		"endpoint", target.Client.Endpoint(),
	)

	start := time.Now()
	stream, err := target.Client.Stream(ctx, rn.threadID, uuid.New().String(), a2a.ConvertMessage(decision.Text))
	if err != nil {
		rn.failRun(target.Name, err)
		return
	}
	defer stream.Close()
	defer func() {
		rn.gateway.metrics.ObserveStream(target.Name, time.Since(start))
	}()

	for {
		ev, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				// Caller closed the inbound connection: cancel promptly
				// and stop without attempting further events.
				rn.logger.Info("client disconnected, canceling backend stream", "target", target.Name)
				rn.gateway.metrics.ObserveRun(target.Name, metrics.OutcomeCanceled)
				return
			}
			rn.closeOpenMessages()
			rn.failRun(target.Name, err)
			return
		}

		for _, fe := range a2a.Translate(ev, &rn.state) {
			if err := rn.writeEvent(fe); err != nil {
				rn.gateway.metrics.ObserveRun(target.Name, metrics.OutcomeCanceled)
				return
			}
		}

		// A terminal status ends the semantic sequence even if the
		// transport stays open a little longer.
		if rn.state.Terminal() {
			break
		}
	}

	rn.closeRun(target.Name)
}

// closeRun emits the single terminal event for a run whose backend
// sequence ended without a transport error.
func (rn *run) closeRun(targetName string) {
	rn.closeOpenMessages()

	if code, reason, failed := rn.state.Failure(); failed {
		if err := rn.writeEvent(agui.NewRunError(reason, code)); err != nil {
			return
		}
		rn.writeDone()
		rn.gateway.metrics.ObserveRun(targetName, metrics.OutcomeError)
		return
	}

	if err := rn.writeEvent(agui.NewRunFinished(rn.threadID, rn.input.RunID)); err != nil {
		return
	}
	rn.writeDone()
	rn.gateway.metrics.ObserveRun(targetName, metrics.OutcomeFinished)
}

// failRun converts a backend-side error into the terminal RUN_ERROR event.
// Partial text already emitted is never retracted.
func (rn *run) failRun(targetName string, err error) {
	code, message := classifyError(err)
	rn.logger.Error("backend stream failed", "target", targetName, "code", code, "error", err)

	if werr := rn.writeEvent(agui.NewRunError(message, code)); werr != nil {
		return
	}
	rn.writeDone()
	rn.gateway.metrics.ObserveRun(targetName, metrics.OutcomeError)
}

// closeOpenMessages flushes any text-message-end events still owed so the
// stream stays fully bracketed before the terminal event.
func (rn *run) closeOpenMessages() {
	for _, fe := range a2a.Finalize(&rn.state) {
		if err := rn.writeEvent(fe); err != nil {
			return
		}
	}
}

// classifyError maps backend errors onto RUN_ERROR codes.
func classifyError(err error) (code, message string) {
	var connErr *a2a.ConnectionError
	var timeoutErr *a2a.TimeoutError
	var protoErr *a2a.ProtocolError

	switch {
	case errors.As(err, &connErr):
		return a2a.CodeConnectionError, connErr.Error()
	case errors.As(err, &timeoutErr):
		return a2a.CodeTimeoutError, timeoutErr.Error()
	case errors.As(err, &protoErr):
		return a2a.CodeProtocolError, protoErr.Error()
	}
	return "A2A_ERROR", err.Error()
}

// writeEvent frames one event onto the outbound stream and flushes it.
// A write failure means the client is gone; the run aborts.
func (rn *run) writeEvent(ev agui.Event) error {
	frame, err := rn.enc.Encode(ev)
	if err != nil {
		rn.logger.Error("failed to encode event", "type", ev.Type(), "error", err)
		return err
	}
	if _, err := rn.w.Write(frame); err != nil {
		rn.logger.Debug("outbound write failed", "error", err)
		return errClientGone
	}
	rn.flusher.Flush()
	rn.gateway.metrics.ObserveEvent(string(ev.Type()))
	return nil
}

// writeDone terminates the SSE stream after the terminal event.
func (rn *run) writeDone() {
	if _, err := rn.w.Write(rn.enc.Done()); err != nil {
		return
	}
	rn.flusher.Flush()
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
