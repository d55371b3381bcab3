/*
Package workspace manages the open tabs of the application and which one is
active, along with panel visibility, layout widths, the shared code buffer and
the auto-save policy.

# Tab lifecycle

	created -> active <-> inactive -> closed

Closing the active tab moves focus to the tab on its left, or to the new first
tab, or to none when the workspace is empty. Tab ids come from a per-session
counter and are never reused.
*/
package workspace
