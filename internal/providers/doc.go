// Package providers groups the service providers behind the tool registry.
//
// Each provider exposes a Definition listing its tools and an Execute that
// dispatches by tool ID:
//   - filesystem: documents under the documents root, listing, thumbnails
//   - ai: completion, explanation, optimization, debugging and chat
//   - web: page title and metadata for web tabs
//   - settings: persisted editor preferences
//
// The export and http/client packages are support code used by the host
// directly rather than through the registry.
//
//	registry := service.NewRegistry()
//	registry.Register(filesystem.NewService(store))
//	result, err := registry.Execute(ctx, "files.list", params, nil)
package providers
