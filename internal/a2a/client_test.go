// ABOUTME: Tests for the A2A streaming client
// ABOUTME: Uses httptest fake agents to exercise stream lifecycle and failure paths

package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAgent runs an httptest server whose handler writes SSE frames.
func fakeAgent(t *testing.T, handler func(w http.ResponseWriter, flush func())) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		var req StreamRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "message/stream", req.Method)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		handler(w, flusher.Flush)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeFrame(w io.Writer, flush func(), payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flush()
}

func TestClient_Endpoint(t *testing.T) {
	c := NewClient("http://agent.local/", "/a2a/", 0, testLogger())
	assert.Equal(t, "http://agent.local/a2a", c.Endpoint())

	c = NewClient("http://agent.local", "/", 0, testLogger())
	assert.Equal(t, "http://agent.local", c.Endpoint())
}

func TestClient_Stream_EventsThenDone(t *testing.T) {
	srv := fakeAgent(t, func(w http.ResponseWriter, flush func()) {
		writeFrame(w, flush, `{"kind":"status-update","taskId":"t1","contextId":"c1","status":{"state":"working"}}`)
		writeFrame(w, flush, `{"kind":"artifact-update","taskId":"t1","contextId":"c1","artifact":{"artifactId":"a1","parts":[{"type":"text","text":"hello"}]}}`)
		writeFrame(w, flush, "[DONE]")
	})

	client := NewClient(srv.URL, "/", 0, testLogger())
	stream, err := client.Stream(context.Background(), "c1", "t1", ConvertMessage("hi"))
	require.NoError(t, err)
	defer stream.Close()

	ev, err := stream.Next(context.Background())
	require.NoError(t, err)
	status, ok := ev.(*TaskStatusUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, TaskStateWorking, status.Status.State)

	ev, err = stream.Next(context.Background())
	require.NoError(t, err)
	artifact, ok := ev.(*TaskArtifactUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, "hello", artifact.Artifact.Text())

	_, err = stream.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestClient_Stream_EndsWithoutDoneMarker(t *testing.T) {
	srv := fakeAgent(t, func(w http.ResponseWriter, flush func()) {
		writeFrame(w, flush, `{"kind":"status-update","taskId":"t1","contextId":"c1","status":{"state":"completed"},"final":true}`)
	})

	client := NewClient(srv.URL, "/", 0, testLogger())
	stream, err := client.Stream(context.Background(), "c1", "t1", ConvertMessage("hi"))
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Next(context.Background())
	require.NoError(t, err)
	_, err = stream.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestClient_Stream_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(srv.URL, "/", 0, testLogger())
	_, err := client.Stream(context.Background(), "c1", "t1", ConvertMessage("hi"))

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, connErr.Error(), srv.URL)
}

func TestClient_Stream_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "/", 0, testLogger())
	_, err := client.Stream(context.Background(), "c1", "t1", ConvertMessage("hi"))

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Contains(t, protoErr.Error(), "503")
}

func TestClient_Stream_IdleTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := fakeAgent(t, func(w http.ResponseWriter, flush func()) {
		flush()
		<-release
	})
	t.Cleanup(func() { close(release) })

	client := NewClient(srv.URL, "/", 50*time.Millisecond, testLogger())
	stream, err := client.Stream(context.Background(), "c1", "t1", ConvertMessage("hi"))
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Next(context.Background())
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
}

func TestClient_Stream_HeartbeatsResetIdleWindow(t *testing.T) {
	srv := fakeAgent(t, func(w http.ResponseWriter, flush func()) {
		// Three keepalives spaced under the idle timeout, summing past it.
		for i := 0; i < 3; i++ {
			time.Sleep(80 * time.Millisecond)
			fmt.Fprint(w, ": ping\n\n")
			flush()
		}
		writeFrame(w, flush, `{"kind":"status-update","taskId":"t1","contextId":"c1","status":{"state":"working"}}`)
		writeFrame(w, flush, "[DONE]")
	})

	client := NewClient(srv.URL, "/", 200*time.Millisecond, testLogger())
	stream, err := client.Stream(context.Background(), "c1", "t1", ConvertMessage("hi"))
	require.NoError(t, err)
	defer stream.Close()

	ev, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &TaskStatusUpdateEvent{}, ev)
}

func TestClient_Stream_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := fakeAgent(t, func(w http.ResponseWriter, flush func()) {
		flush()
		<-release
	})
	t.Cleanup(func() { close(release) })

	client := NewClient(srv.URL, "/", 0, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := client.Stream(ctx, "c1", "t1", ConvertMessage("hi"))
	require.NoError(t, err)
	defer stream.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = stream.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Stream_MalformedFrame(t *testing.T) {
	srv := fakeAgent(t, func(w http.ResponseWriter, flush func()) {
		writeFrame(w, flush, `{"kind":"status-update",`)
	})

	client := NewClient(srv.URL, "/", 0, testLogger())
	stream, err := client.Stream(context.Background(), "c1", "t1", ConvertMessage("hi"))
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Next(context.Background())
	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestClient_Stream_SkipsUnrecognizedEvents(t *testing.T) {
	srv := fakeAgent(t, func(w http.ResponseWriter, flush func()) {
		writeFrame(w, flush, `{"kind":"telemetry","detail":"ignored"}`)
		writeFrame(w, flush, `{"jsonrpc":"2.0","result":{"kind":"status-update","taskId":"t1","contextId":"c1","status":{"state":"working"}}}`)
		writeFrame(w, flush, "[DONE]")
	})

	client := NewClient(srv.URL, "/", 0, testLogger())
	stream, err := client.Stream(context.Background(), "c1", "t1", ConvertMessage("hi"))
	require.NoError(t, err)
	defer stream.Close()

	ev, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &TaskStatusUpdateEvent{}, ev)

	_, err = stream.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestClient_Stream_CloseStopsReader(t *testing.T) {
	release := make(chan struct{})
	srv := fakeAgent(t, func(w http.ResponseWriter, flush func()) {
		flush()
		<-release
	})
	t.Cleanup(func() { close(release) })

	client := NewClient(srv.URL, "/", 0, testLogger())
	stream, err := client.Stream(context.Background(), "c1", "t1", ConvertMessage("hi"))
	require.NoError(t, err)

	stream.Close()
	stream.Close() // idempotent

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err = stream.Next(ctx)
	assert.Error(t, err)
}

func TestClient_Stream_MalformedFrameCarriesCause(t *testing.T) {
	err := &ProtocolError{Message: "malformed event frame", Err: io.ErrUnexpectedEOF}
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "malformed event frame")
}
