// Package auth provides bearer-token authentication for the gateway's
// HTTP API. Tokens are HS256-signed JWTs verified against the shared
// secret from config; the "sub" claim identifies the caller and is made
// available through the request context. Auth is optional: when no secret
// is configured the API is open.
package auth
