// Package wlog provides the process-wide structured logger.
package wlog

import (
	"flag"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError

	DefaultLevel = LevelInfo
)

// Level is the process log level, 0=debug .. 3=error. Lower is chattier.
var Level int

var L *zap.Logger

func init() {
	flag.IntVar(&Level, "ll", DefaultLevel, "log level, 0=debug, 1=info, 2=warn, 3=error")
}

// Init sets up the package logger. Must be called once after flag.Parse.
func Init() {
	atomicLevel := zap.NewAtomicLevel()
	atomicLevel.SetLevel(zapcore.Level(Level - 1))

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    "level",
		TimeKey:     "time",
		NameKey:     "logger",
		EncodeLevel: zapcore.CapitalColorLevelEncoder,
		EncodeTime:  zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeName:  zapcore.FullNameEncoder,
		LineEnding:  zapcore.DefaultLineEnding,
	}), zapcore.AddSync(os.Stdout), atomicLevel)

	L = zap.New(core)
}

func CanDebug(msg string) *zapcore.CheckedEntry { return L.Check(zap.DebugLevel, msg) }
func CanInfo(msg string) *zapcore.CheckedEntry  { return L.Check(zap.InfoLevel, msg) }
func CanWarn(msg string) *zapcore.CheckedEntry  { return L.Check(zap.WarnLevel, msg) }
func CanError(msg string) *zapcore.CheckedEntry { return L.Check(zap.ErrorLevel, msg) }
