package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger configured for console output
// with line numbers and no timestamps. Logs go to stderr so they never
// mix with what the tool prints for the user.
func New(debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "level",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalColorLevelEncoder, // Colored level names
		EncodeCaller:  zapcore.ShortCallerEncoder,       // Show file:line
		// TimeKey is omitted to remove timestamps
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       debug,
		Encoding:          "console", // Console format instead of JSON
		EncoderConfig:     encoderConfig,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     false,  // Enable caller info for line numbers
		DisableStacktrace: !debug, // Only show stack traces in debug mode
	}

	return config.Build()
}
