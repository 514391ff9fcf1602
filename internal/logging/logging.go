// Package logging builds the zap logger shared by the store, the query
// service and the CLI.
//
// Warnings and errors always go to stderr in console format. When a log
// file is configured, every entry at the configured level is also written
// there as JSON, rotated by lumberjack.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/calvinalkan/recipebox/internal/config"
)

// Rotation limits for the log file.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New returns a logger for cfg. The returned close function flushes and
// releases the log file; it is safe to call when no file is configured.
func New(cfg config.Config, stderr io.Writer) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	consoleLevel := max(level, zapcore.WarnLevel)

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.AddSync(stderr),
			consoleLevel,
		),
	}

	closeFile := func() error { return nil }

	if cfg.LogFileAbs != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFileAbs,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			zapcore.AddSync(file),
			level,
		))

		closeFile = file.Close
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named("recipebox")

	return logger, func() error {
		_ = logger.Sync()
		return closeFile()
	}, nil
}
