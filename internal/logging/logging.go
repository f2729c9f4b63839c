// Package logging holds the shared file-backed logger. Diagnostics go to
// a rotated log file in the data directory so nothing interleaves with
// the inline TUI.
package logging

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = zap.NewNop()

// Init sets up the rotated file logger under dir. Call once at startup;
// before Init (and in tests) the package logger is a nop.
func Init(dir string, debug bool) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&lumberjack.Logger{
			Filename: filepath.Join(dir, "logs", "postcraft.log"),
			MaxSize:  20, // MB
			MaxAge:   14, // days
			Compress: true,
		}),
		level,
	)
	logger = zap.New(core)
}

// L returns the shared logger.
func L() *zap.Logger {
	return logger
}

// Sync flushes buffered log entries.
func Sync() {
	_ = logger.Sync()
}
