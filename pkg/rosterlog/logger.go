// Package rosterlog wraps go.uber.org/zap to give every component that
// needs to report progress (the LNS/ALNS engine) a structured,
// component-scoped logger.
package rosterlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the narrow interface core components depend on, so tests and
// callers that don't want a real zap sink can substitute a no-op.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

type zapLogger struct{ l *zap.Logger }

func (z zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z zapLogger) With(fields ...zap.Field) Logger        { return zapLogger{l: z.l.With(fields...)} }

// Wrap adapts a *zap.Logger to the Logger interface.
func Wrap(l *zap.Logger) Logger { return zapLogger{l: l} }

// Nop returns a Logger that discards everything, for tests and for run
// configurations that disable logging.
func Nop() Logger { return zapLogger{l: zap.NewNop()} }

// logDirEnv names the directory that receives per-run JSON log files. When
// unset, New builds a console-only logger.
const logDirEnv = "ROSTERIZER_LOG_DIR"

// New builds the process logger. The console core prints colored
// human-readable lines, at Debug for dev/test environments and Info
// otherwise. When ROSTERIZER_LOG_DIR is set, a second core tees full Debug
// detail as JSON into a timestamped <env>_<time>.log file there.
func New(env string) (*zap.Logger, error) {
	consoleLevel := zapcore.InfoLevel
	if env == "dev" || env == "test" {
		consoleLevel = zapcore.DebugLevel
	}

	console := zap.NewDevelopmentEncoderConfig()
	console.EncodeLevel = zapcore.CapitalColorLevelEncoder
	console.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(console), zapcore.Lock(os.Stdout), consoleLevel),
	}

	if dir := os.Getenv(logDirEnv); dir != "" {
		f, err := openRunLog(dir, env)
		if err != nil {
			return nil, err
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "timestamp"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(f), zapcore.DebugLevel))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func openRunLog(dir, env string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("rosterlog: create log directory: %w", err)
	}
	name := fmt.Sprintf("%s_%s.log", env, time.Now().Format("2006-01-02_15-04-05"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("rosterlog: open run log: %w", err)
	}
	return f, nil
}
