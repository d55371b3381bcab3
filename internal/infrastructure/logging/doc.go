// Package logging builds the zap loggers used across the server.
//
// Production mode writes JSON, development mode writes coloured console
// lines. When a log file is configured, every entry is also written as
// JSON to a lumberjack-rotated file.
//
//	logger, err := logging.New(logging.Config{Level: "info", File: &logging.FileConfig{Path: "data/studio.log"}})
//	logger.Info("Server starting", zap.String("addr", addr))
package logging
