// Package main runs the DocStudio host.
//
// The host owns the annotation and workspace state for the desktop UI and
// brokers file access, AI provider calls and web metadata for it over a
// local HTTP + WebSocket API.
//
// Configuration:
//   - .env file, then environment variables
//   - CLI flags (override both)
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# Development mode (console logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown, pending auto-saves are flushed
package main
