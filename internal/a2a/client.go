// ABOUTME: Streaming client for A2A task-execution backends
// ABOUTME: Opens one message/stream call and yields events as a cancelable pull stream

package a2a

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// maxFrameSize bounds a single SSE line; artifact chunks are small but
// backends occasionally batch large text parts into one frame.
const maxFrameSize = 1 << 20

// Client speaks the A2A streaming protocol to one backend agent endpoint.
// The underlying http.Client (and its connection pool) is safe for
// concurrent use, so one Client serves all simultaneous runs to a target.
type Client struct {
	baseURL     string
	path        string
	idleTimeout time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a client for the A2A agent at baseURL+path.
// idleTimeout bounds the wait for the next event or heartbeat; the zero
// value disables the idle check.
func NewClient(baseURL, path string, idleTimeout time.Duration, logger *slog.Logger) *Client {
	if path == "/" {
		path = ""
	} else {
		path = strings.TrimRight(path, "/")
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		path:        path,
		idleTimeout: idleTimeout,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

// Endpoint returns the resolved stream URL.
func (c *Client) Endpoint() string {
	return c.baseURL + c.path
}

// Stream sends one message/stream request and returns the event stream.
// The stream ends when the backend closes the response, and is torn down
// promptly when ctx is canceled or Close is called. Connection failures
// return a ConnectionError; non-200 responses return a ProtocolError.
func (c *Client) Stream(ctx context.Context, contextID, taskID string, msg Message) (*EventStream, error) {
	body, err := json.Marshal(NewStreamRequest(contextID, taskID, msg))
	if err != nil {
		return nil, fmt.Errorf("marshaling stream request: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(streamCtx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("building stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	c.logger.Info("opening A2A stream",
		"endpoint", c.Endpoint(),
		"context_id", contextID,
		"task_id", taskID,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, &ConnectionError{URL: c.Endpoint(), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		cancel()
		return nil, &ProtocolError{Message: fmt.Sprintf("agent returned status %d", resp.StatusCode)}
	}

	es := &EventStream{
		endpoint:    c.Endpoint(),
		idleTimeout: c.idleTimeout,
		ctx:         streamCtx,
		cancel:      cancel,
		items:       make(chan streamItem, 16),
		logger:      c.logger,
	}
	go es.read(resp.Body)
	return es, nil
}

// streamItem is one delivery from the reader goroutine. A nil event with a
// nil error is a heartbeat: the backend showed liveness without content.
type streamItem struct {
	event StreamEvent
	err   error
}

// EventStream is a pull-based, cancelable sequence of backend events.
// It is restartable per call, not resumable: each Client.Stream call opens
// a fresh transport connection.
type EventStream struct {
	endpoint    string
	idleTimeout time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	items       chan streamItem
	closeOnce   sync.Once
	logger      *slog.Logger
}

// Next blocks until the next event arrives, the stream ends, ctx is
// canceled, or the idle timeout expires. It returns io.EOF on normal end
// of stream. Heartbeat frames reset the idle window without surfacing.
func (s *EventStream) Next(ctx context.Context) (StreamEvent, error) {
	for {
		var timer *time.Timer
		var idleCh <-chan time.Time
		if s.idleTimeout > 0 {
			timer = time.NewTimer(s.idleTimeout)
			idleCh = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			s.Close()
			return nil, ctx.Err()
		case <-idleCh:
			s.Close()
			return nil, &TimeoutError{URL: s.endpoint, Timeout: s.idleTimeout}
		case item, ok := <-s.items:
			stopTimer(timer)
			if !ok {
				return nil, io.EOF
			}
			if item.err != nil {
				return nil, item.err
			}
			if item.event == nil {
				// Heartbeat: restart the idle window.
				continue
			}
			return item.event, nil
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

// Close tears down the underlying connection. Safe to call multiple times
// and concurrently with Next.
func (s *EventStream) Close() {
	s.closeOnce.Do(s.cancel)
}

// read consumes SSE lines from the response body until the backend closes
// the stream or the stream context is canceled.
func (s *EventStream) read(body io.ReadCloser) {
	defer body.Close()
	defer close(s.items)

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ":"):
			// SSE comment, used by agents as a keepalive.
			s.deliver(streamItem{})
			continue
		case !strings.HasPrefix(line, "data:"):
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			s.deliver(streamItem{})
			continue
		}
		if data == "[DONE]" {
			return
		}

		ev, err := ParseEvent([]byte(data))
		if err != nil {
			s.deliver(streamItem{err: err})
			return
		}
		if ev == nil {
			s.logger.Debug("skipping unrecognized A2A event", "endpoint", s.endpoint)
			continue
		}
		if !s.deliver(streamItem{event: ev}) {
			return
		}
	}

	if err := scanner.Err(); err != nil && s.ctx.Err() == nil {
		s.deliver(streamItem{err: &ConnectionError{URL: s.endpoint, Err: err}})
	}
}

// deliver sends one item unless the stream has been canceled.
func (s *EventStream) deliver(item streamItem) bool {
	select {
	case s.items <- item:
		return true
	case <-s.ctx.Done():
		return false
	}
}
