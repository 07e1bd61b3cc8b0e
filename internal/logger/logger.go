// Package logger configures the zap logger shared by every plicss tool.
//
// Each tool asks for a named logger; the name is rendered as a bracketed
// tag in front of every line, e.g. "[build] wrote core.min.css".
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls the global logger.
type Options struct {
	Verbose bool      // debug level
	Quiet   bool      // errors only
	Color   bool      // colored level names
	Output  io.Writer // defaults to os.Stderr
}

// Setup builds a console logger from opts and installs it as the zap global.
// The returned func restores the previous global logger.
func Setup(opts Options) func() {
	return zap.ReplaceGlobals(New(opts))
}

// New builds a console logger without installing it.
func New(opts Options) *zap.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}

	level := zapcore.InfoLevel
	switch {
	case opts.Quiet:
		level = zapcore.ErrorLevel
	case opts.Verbose:
		level = zapcore.DebugLevel
	}

	encCfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		NameKey:          "logger",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       bracketName,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	if opts.Color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core)
}

// For returns a sugared logger tagged with the given tool name.
func For(tag string) *zap.SugaredLogger {
	return zap.L().Named(tag).Sugar()
}

func bracketName(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + name + "]")
}
