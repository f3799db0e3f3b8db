// Package logging builds the process-wide zap logger. Log lines go to the
// console and to a size-rotated JSON file so long bot sessions can be
// inspected after the fact.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a logger writing to stdout and, if logFile is non-empty, to a
// rotated JSON log file. verbose lowers the console level to debug.
func New(logFile string, verbose bool) *zap.Logger {
	consoleLevel := zap.InfoLevel
	if verbose {
		consoleLevel = zap.DebugLevel
	}

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		consoleLevel,
	)

	if logFile == "" {
		return zap.New(consoleCore)
	}

	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		zap.DebugLevel,
	)

	return zap.New(zapcore.NewTee(consoleCore, fileCore))
}

// NewFileOnly creates a logger writing only to the rotated JSON log file.
// It is used where stdout belongs to a protocol stream, e.g. MCP over stdio.
func NewFileOnly(logFile string, verbose bool) *zap.Logger {
	if logFile == "" {
		return zap.NewNop()
	}

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		level,
	))
}

// NewNop returns a no-op logger, useful in tests.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
