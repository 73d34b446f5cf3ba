// Package client talks to the files manager HTTP API.
//
// # Overview
//
// Client is the contract the CLI depends on. HTTPClient implements it over
// net/http: it keeps the session token returned by Login and sends it in the
// X-Token header on every authenticated call.
//
// # Error Handling
//
// Transport failures map to ErrUnavailable and 401 responses to
// ErrUnauthorized. Any other non-2xx response is returned as *APIError
// carrying the status code and the server message. Match with errors.Is and
// errors.As.
//
// All operations accept context.Context and honor cancellation.
package client
