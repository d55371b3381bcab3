// Package session saves and restores whole workspaces.
//
// A snapshot holds every open tab (documents keep their bytes, editors
// keep their annotations in interchange JSON), the panel layout and the
// shared code buffer. Snapshots are JSON compressed with zstd and stored
// as {dir}/{id}.session, where ids are "sess_" plus a ULID.
//
//	manager, err := session.NewManager(filepath.Join(root, "sessions"), logger)
//	snap, err := manager.Save(ctx, "Review", "", controller)
//	err = manager.Restore(ctx, snap.ID, controller)
package session
