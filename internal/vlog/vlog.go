// Package vlog provides structured diagnostic logging for the VNDK
// analyzer using zap.
package vlog

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with the diagnostic-stream helpers the VNDK
// analyzer needs (spec §4.7, §7: diagnostics go to a separate stream from
// the classification report).
type Logger struct {
	*zap.Logger
}

var (
	// L is the global diagnostic logger. Callers that don't have a
	// Logger threaded through may use this directly.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger. Safe to call multiple times; only
// the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a new Logger. In debug mode it uses a human-readable
// development config; otherwise a production JSON config at WarnLevel,
// since ordinary resolution/semantic warnings (spec §7) are expected
// background noise, not actionable alerts.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}
	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger, for tests that exercise warning paths
// without asserting on their content.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Path creates a canonical-path field.
func Path(path string) zap.Field {
	return zap.String("path", path)
}

// Symbol creates a symbol-name field.
func Symbol(name string) zap.Field {
	return zap.String("symbol", name)
}

// Candidates creates a field listing the search candidates tried while
// resolving a DT_NEEDED entry (spec §4.3 step 1).
func Candidates(paths []string) zap.Field {
	return zap.Strings("candidates", paths)
}

// Reason creates a free-form reason field, used for banned-library and
// classification diagnostics (spec §7).
func Reason(reason string) zap.Field {
	return zap.String("reason", reason)
}
