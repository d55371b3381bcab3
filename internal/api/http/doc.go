// Package http exposes the studio over a JSON HTTP API.
//
// Handlers translate requests into workspace, editor, document, service,
// assistant and session operations. Domain errors map to status codes in
// one place (statusFor) and every failure body is {"error": "..."}.
package http
