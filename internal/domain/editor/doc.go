// Package editor implements the per-document annotation session: the current
// annotation set, a linear snapshot history with undo/redo, and the active
// drawing-tool configuration.
package editor
