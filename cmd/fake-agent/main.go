// ABOUTME: Minimal fake A2A agent for local gateway development — echoes messages as streamed chunks.
// ABOUTME: Usage: fake-agent [-addr localhost:9000] [-chunk-delay 50ms]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/agui-gateway/internal/a2a"
)

func main() {
	addr := flag.String("addr", "localhost:9000", "HTTP listen address")
	chunkDelay := flag.Duration("chunk-delay", 50*time.Millisecond, "delay between streamed chunks")
	flag.Parse()

	if err := run(*addr, *chunkDelay); err != nil {
		log.Fatal(err)
	}
}

func run(addr string, chunkDelay time.Duration) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { handleStream(w, r, chunkDelay) }),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "fake A2A agent listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func handleStream(w http.ResponseWriter, r *http.Request, chunkDelay time.Duration) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req a2a.StreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON-RPC body", http.StatusBadRequest)
		return
	}
	if req.Method != "message/stream" {
		http.Error(w, "unsupported method", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	taskID := req.Params.TaskID
	if taskID == "" {
		taskID = uuid.New().String()
	}
	contextID := req.Params.ContextID
	input := req.Params.Message.Text()
	log.Printf("received message [task %s]: %s", taskID, input)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	send := func(v any) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	send(&a2a.TaskStatusUpdateEvent{
		Kind:      "status-update",
		TaskID:    taskID,
		ContextID: contextID,
		Status:    a2a.TaskStatus{State: a2a.TaskStateWorking},
	})

	artifactID := uuid.New().String()
	for i, chunk := range echoChunks(input) {
		send(&a2a.TaskArtifactUpdateEvent{
			Kind:      "artifact-update",
			TaskID:    taskID,
			ContextID: contextID,
			Artifact: a2a.Artifact{
				ArtifactID: artifactID,
				Name:       "reply",
				Parts:      []a2a.Part{a2a.TextPart(chunk)},
				Index:      i,
				Append:     i > 0,
			},
		})
		select {
		case <-r.Context().Done():
			return
		case <-time.After(chunkDelay):
		}
	}

	send(&a2a.TaskStatusUpdateEvent{
		Kind:      "status-update",
		TaskID:    taskID,
		ContextID: contextID,
		Status:    a2a.TaskStatus{State: a2a.TaskStateCompleted},
		Final:     true,
	})
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// echoChunks splits the echo reply on word boundaries so the gateway sees
// a realistic incremental stream.
func echoChunks(input string) []string {
	reply := fmt.Sprintf("Echo: %s", input)
	if input == "" {
		reply = "Echo: (empty message)"
	}

	words := strings.SplitAfter(reply, " ")
	chunks := make([]string, 0, len(words))
	for _, word := range words {
		if word != "" {
			chunks = append(chunks, word)
		}
	}
	return chunks
}
