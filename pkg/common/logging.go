package common

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Global variables for logger management
var (
	logger     *zap.Logger
	loggerOnce sync.Once
	loggerMu   sync.RWMutex
)

// LogConfig defines logging configuration
type LogConfig struct {
	Level      string
	OutputPath string
	MaxSize    int // megabytes
	MaxBackups int // number of backups
	MaxAge     int // days
	Compress   bool
	Console    bool
}

// NewLogConfig creates a LogConfig with defaults suited to CLI runs: compact
// console output on stderr plus a rotated JSON file.
func NewLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		OutputPath: "logs/analyzer.log",
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
		Console:    true,
	}
}

// InitLogger initializes the global logger. Safe to call once per process;
// subsequent calls replace the logger (used by tests).
func InitLogger(config LogConfig) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		return NewError("E2002", "invalid log level", map[string]interface{}{
			"level": config.Level,
		})
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cores := make([]zapcore.Core, 0, 2)

	if config.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o755); err != nil {
			return WrapError(err, "failed to create log directory", nil)
		}
		rotator := &lumberjack.Logger{
			Filename:   config.OutputPath,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(rotator),
			level,
		))
	}

	if config.Console {
		// Diagnostics go to stderr so stdout stays clean for result summaries.
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			level,
		))
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

func getLogger() *zap.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}
	// Fall back to a console logger so library code never logs into the void.
	loggerOnce.Do(func() {
		loggerMu.Lock()
		if logger == nil {
			encoderConfig := zap.NewProductionEncoderConfig()
			encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			logger = zap.New(zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderConfig),
				zapcore.AddSync(os.Stderr),
				zapcore.InfoLevel,
			))
		}
		loggerMu.Unlock()
	})
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Debug logs a debug message
func Debug(message string, fields ...zap.Field) {
	getLogger().Debug(message, fields...)
}

// Info logs an informational message
func Info(message string, fields ...zap.Field) {
	getLogger().Info(message, fields...)
}

// Warn logs a warning message
func Warn(message string, fields ...zap.Field) {
	getLogger().Warn(message, fields...)
}

// Error logs an error message with the coded error attached when available
func Error(message string, err error, fields ...zap.Field) {
	if err != nil {
		var aerr *AnalyzerError
		if errors.As(err, &aerr) {
			fields = append(fields, zap.String("error_code", aerr.Code))
		}
		fields = append(fields, zap.Error(err))
	}
	getLogger().Error(message, fields...)
}

// Sync flushes buffered log entries
func Sync() {
	_ = getLogger().Sync()
}
