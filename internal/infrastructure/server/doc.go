// Package server assembles the DocStudio host: configuration, logging,
// metrics, the studio controller, providers, the service registry and the
// HTTP/WebSocket API. Run serves until its context ends and then shuts
// the listener down, stops the watcher and auto-save loops and flushes
// pending saves.
package server
