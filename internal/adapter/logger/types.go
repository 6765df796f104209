package logger

import (
	"log/slog"
	"strings"
)

// Log entry field names
const (
	KeyTimestamp = "timestamp"
	KeyMessage   = "message"
	KeyService   = "service"
	KeyHostname  = "hostname"
	KeyRequestID = "request_id"
	KeyAction    = "action"
	KeyDetails   = "details"
	KeyError     = "error"
)

type ErrorInfo struct {
	Msg string `json:"msg"`
}

// ParseLevel accepts debug, info, warn and error. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
