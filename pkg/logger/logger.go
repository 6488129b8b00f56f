package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger instance. It defaults to a no-op logger so
// packages can log before Init runs (and during tests).
var Log = zap.NewNop()

// Init builds the global logger. Development mode uses colored console
// output at debug level, production mode uses JSON at info level.
func Init(isDevelopment bool) error {
	var config zap.Config

	if isDevelopment {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	log, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return err
	}

	Log = log
	return nil
}

// Sync flushes any buffered log entries. Call before the process exits.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
