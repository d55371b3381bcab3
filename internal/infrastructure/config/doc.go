// Package config provides 12-factor configuration for the DocStudio host.
//
// Values come from the environment, after any .env file has been loaded, with
// defaults for everything except provider API keys. CLI flags in cmd/server
// override the port and dev mode.
//
// Configuration Sections:
//   - Server: listen address and dev mode
//   - AI: provider selection, model, temperature and API keys
//   - Storage: data root, documents root and settings file
//   - Logging: level, format and optional rotating file
//   - RateLimit: per-IP inbound rate limiting
//   - AutoSave: initial auto-save policy
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Address())
//
// Environment Variables:
//   - PORT, HOST, DEV
//   - AI_PROVIDER, AI_MODEL, AI_TEMPERATURE, AI_TIMEOUT, AI_RPS
//   - OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY, OLLAMA_URL
//   - STORAGE_ROOT, DOCUMENTS_ROOT, SETTINGS_FILE
//   - LOG_LEVEL, LOG_DEV, LOG_FILE
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED, RATE_LIMIT_GLOBAL
//   - AUTOSAVE_ENABLED, AUTOSAVE_INTERVAL
package config
