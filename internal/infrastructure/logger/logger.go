package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mycodedstuff/pibot/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a new logger. The returned closer releases the log file, if any.
func New(cfg *config.LoggingConfig) (zerolog.Logger, io.Closer) {
	// Set log level
	logLevel := parseLogLevel(cfg.Level)
	zerolog.SetGlobalLevel(logLevel)

	// Create logger with pretty console output, mirrored to a rotating file when configured
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	logger := zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger, closer
}

// parseLogLevel parses log level string to zerolog.Level
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
