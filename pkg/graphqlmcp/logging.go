package graphqlmcp

import (
	"log/slog"

	"github.com/go-logr/logr"

	"github.com/graphql-mcp/bridge/internal/obslog"
)

// ConfigureLogging sets up structured logging for the MCP GraphQL server,
// delegating to internal/obslog.Configure (the generalized form of this
// function backing the live-reconfiguring server's logging) so both entry
// points build their slog.Handler/logr.Logger the same way.
func ConfigureLogging(level slog.Level, jsonOutput bool) logr.Logger {
	return obslog.Configure(obslog.Config{
		Level: levelFromSlog(level),
		JSON:  jsonOutput,
	})
}

// ConfigureVerboseLogging sets up verbose logging for debugging
func ConfigureVerboseLogging() logr.Logger {
	return ConfigureLogging(slog.LevelDebug, false)
}

// ConfigureProductionLogging sets up production-appropriate logging
func ConfigureProductionLogging() logr.Logger {
	return ConfigureLogging(slog.LevelInfo, true)
}

func levelFromSlog(level slog.Level) obslog.Level {
	switch {
	case level <= slog.LevelDebug:
		return obslog.LevelDebug
	case level <= slog.LevelInfo:
		return obslog.LevelInfo
	case level <= slog.LevelWarn:
		return obslog.LevelWarn
	default:
		return obslog.LevelError
	}
}
