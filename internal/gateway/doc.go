// Package gateway orchestrates the agui-gateway server.
//
// # Overview
//
// The gateway bridges a single AG-UI request into one streaming call
// against an A2A backend agent, translating backend events into AG-UI
// events as they arrive so the caller observes one continuous live stream.
//
// # Pipeline
//
// For each POST /api/agui/chat request:
//
//  1. RUN_STARTED is written immediately, before routing.
//  2. The Router matches the last user message against configured prefix
//     rules and picks a backend target (or the default).
//  3. A rule that rewrites the message to empty content skips the backend
//     entirely: the stream is exactly [RUN_STARTED, RUN_FINISHED].
//  4. The target's a2a.Client opens one message/stream call; every backend
//     event is translated and written, in order, to the SSE response.
//  5. When the backend sequence ends, open messages are closed and exactly
//     one terminal event (RUN_FINISHED or RUN_ERROR) ends the stream.
//
// Backend failures - connect errors, idle timeouts, protocol violations,
// and failed or canceled tasks - all surface as a single RUN_ERROR; text
// already streamed is never retracted. If the caller disconnects, the
// backend call is canceled promptly and no further events are written.
//
// # HTTP surface
//
//   - POST /api/agui/chat - bridge a run (SSE streaming response)
//   - GET /health - liveness check
//   - GET /health/ready - readiness check
//   - GET /metrics - Prometheus metrics (when enabled)
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger)
//	err = gw.Run(ctx) // blocks until ctx is canceled
package gateway
