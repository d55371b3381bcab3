// Package app coordinates the lifecycle of document tabs.
//
// Manager sits between the studio controller and the file store: it opens
// files into tabs (restoring sidecar annotations), saves tabs, runs the
// auto-save loop and turns file watcher changes into UI events.
package app
