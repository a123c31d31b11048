package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogRotationConfig holds configuration for log rotation
type LogRotationConfig struct {
	MaxAge     int  `toml:"max_age"`     // Maximum number of days to retain log files
	MaxSize    int  `toml:"max_size"`    // Maximum size in megabytes before rotation
	MaxBackups int  `toml:"max_backups"` // Maximum number of backup files to retain
	Compress   bool `toml:"compress"`    // Whether to compress rotated files
}

// DefaultLogRotationConfig returns sensible defaults for log rotation
func DefaultLogRotationConfig() LogRotationConfig {
	return LogRotationConfig{
		MaxAge:     30,
		MaxSize:    10,
		MaxBackups: 5,
		Compress:   true,
	}
}

// Logging format constants
const (
	LoggingFormatJSON    = "json"
	LoggingFormatConsole = "console"
)

// IsValidLoggingFormat returns true if the provided format is supported.
func IsValidLoggingFormat(f string) bool {
	return f == LoggingFormatJSON || f == LoggingFormatConsole
}

// SetupLogRotation configures log rotation for a given log file path
func SetupLogRotation(logPath string, config LogRotationConfig) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
		LocalTime:  true,
	}, nil
}

// NewLogger builds a zap logger from cfg. Output goes to the rotated file when
// cfg.File is set and to stderr otherwise. The returned func flushes and closes
// the sink.
func NewLogger(cfg LogConfig, debug bool) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	var enc zapcore.Encoder
	if cfg.Format == LoggingFormatConsole {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	sink := zapcore.Lock(os.Stderr)
	closeSink := func() {}
	if cfg.File != "" {
		rot, err := SetupLogRotation(cfg.File, cfg.Rotation)
		if err != nil {
			return nil, nil, err
		}
		sink = zapcore.AddSync(rot)
		closeSink = func() { _ = rot.Close() }
	}

	logger := zap.New(zapcore.NewCore(enc, sink, level), zap.AddCaller())
	cleanup := func() {
		_ = logger.Sync()
		closeSink()
	}
	return logger, cleanup, nil
}
