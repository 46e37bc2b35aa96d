// Package a2a implements the backend side of the bridge: the A2A protocol
// models, a streaming client that opens one message/stream call per run and
// yields events as a cancelable pull stream, and the translator that maps
// those events into AG-UI front events.
//
// # Streaming
//
// A run drives the stream like this:
//
//	stream, err := client.Stream(ctx, contextID, taskID, msg)
//	for {
//	    ev, err := stream.Next(ctx)
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    ...
//	}
//	stream.Close()
//
// Next enforces the idle-read timeout and returns typed errors: a
// ConnectionError for transport failures, a TimeoutError when the backend
// goes silent, and a ProtocolError for malformed frames. The client never
// retries; that is the caller's policy.
//
// # Translation
//
// Translate is pure with respect to the RunState accumulator the caller
// passes in, so message bracketing (start before content, exactly one end)
// is testable without standing up a run.
package a2a
