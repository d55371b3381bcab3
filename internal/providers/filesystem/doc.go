// Package filesystem opens, saves and browses the documents shown in tabs.
//
// Only the extensions in the mime table can be opened. Writes go through a
// temp file and a rename so a crash never leaves a half-written document.
// The Watcher turns fsnotify events on open documents into Change values
// that the server forwards to WebSocket clients.
package filesystem
