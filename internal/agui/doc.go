// Package agui defines the AG-UI front-protocol surface of the gateway:
// the inbound RunAgentInput request model, the closed set of outbound
// event variants, and the SSE encoder that frames events for streaming.
//
// Events follow the AG-UI event vocabulary (RUN_STARTED, TEXT_MESSAGE_*,
// RUN_FINISHED, RUN_ERROR, TOOL_CALL_*). The package holds no I/O and no
// run state; translation from backend events lives in internal/a2a and
// orchestration in internal/gateway.
package agui
