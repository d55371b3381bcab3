// Package service is the tool registry behind POST /services/execute.
//
// Each provider (documents, ai, settings, web) registers a definition
// listing its tools. Tool IDs take the form "service.tool"; the registry
// routes a call by the part before the first dot.
//
//	registry := service.NewRegistry()
//	registry.Register(settingsService)
//	result, err := registry.Execute(ctx, "settings.get", nil, nil)
package service
