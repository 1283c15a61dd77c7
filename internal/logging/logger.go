// Package logging builds the zap logger used across the server:
// console or rotated-file output, selectable level, matching the way
// packetd wires zap + lumberjack.
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the server logger.
type Options struct {
	// Stdout writes to standard out instead of a rotated file.
	Stdout bool

	// Level is one of "debug", "info", "warn", "error". Unknown or empty
	// values fall back to debug, matching the teacher's logger.
	Level string

	// Filename is the rotated log file's path, used when Stdout is false.
	Filename string

	// MaxSize is the rotation threshold in megabytes.
	MaxSize int

	// MaxAge is how many days to retain old log files.
	MaxAge int

	// MaxBackups is how many rotated files to keep.
	MaxBackups int
}

func toZapLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}

// New builds a *zap.Logger per opt. Panics if the log directory can't be
// created, matching the teacher's own New.
func New(opt Options) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Local().Format("2006-01-02 15:04:05.000"))
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	var w zapcore.WriteSyncer
	if opt.Stdout || opt.Filename == "" {
		w = zapcore.AddSync(os.Stdout)
	} else {
		if err := os.MkdirAll(filepath.Dir(opt.Filename), os.ModePerm); err != nil {
			panic(err)
		}
		w = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opt.Filename,
			MaxSize:    opt.MaxSize,
			MaxBackups: opt.MaxBackups,
			MaxAge:     opt.MaxAge,
			LocalTime:  true,
		})
	}

	core := zapcore.NewCore(encoder, w, toZapLevel(opt.Level))
	return zap.New(core, zap.AddCaller())
}
