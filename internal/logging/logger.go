package logging

import (
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides optional verbose logging and lightweight timing helpers.
// The zero value discards everything.
type Logger struct {
	sugar   *zap.SugaredLogger
	Verbose bool
}

// New builds a console logger writing to writer. Verbose runs log at debug
// level; otherwise only warnings and errors get through.
func New(writer io.Writer, verbose bool) Logger {
	if writer == nil {
		return Logger{Verbose: verbose}
	}

	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.CallerKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(writer),
		zap.NewAtomicLevelAt(level),
	)
	return Logger{sugar: zap.New(core).Sugar(), Verbose: verbose}
}

// WithRun tags every entry with a fresh run identifier.
func (l Logger) WithRun() Logger {
	if l.sugar == nil {
		return l
	}
	l.sugar = l.sugar.With("run", uuid.NewString())
	return l
}

func (l Logger) Infof(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

func (l Logger) Warnf(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose || l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.Verbosef("%s took %s", label, elapsed)
	}
}

func (l Logger) Sync() {
	if l.sugar != nil {
		_ = l.sugar.Sync()
	}
}
