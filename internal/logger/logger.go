package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"starforge/pkg/models"
)

// Logger is a structured logger wrapper around zerolog. Pipeline stages log
// through this type so the output format stays uniform across commands.
type Logger struct {
	zlog zerolog.Logger
}

// New creates a Logger from the log section of the config
func New(cfg models.LogConfig) *Logger {
	var output io.Writer = os.Stderr
	if cfg.Format == "" || cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	zlog := zerolog.New(output).
		With().
		Timestamp().
		Logger()

	return &Logger{zlog: zlog}
}

// NewNop returns a logger that discards everything, for tests
func NewNop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

func parseLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithRun returns a logger tagged with a pipeline run id and stage name
func (l *Logger) WithRun(runID, stage string) *Logger {
	zlog := l.zlog.With().Str("run_id", runID).Str("stage", stage).Logger()
	return &Logger{zlog: zlog}
}

// WithField returns a new logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	zlog := l.zlog.With().Interface(key, value).Logger()
	return &Logger{zlog: zlog}
}

// WithError returns a new logger with an error field
func (l *Logger) WithError(err error) *Logger {
	zlog := l.zlog.With().Err(err).Logger()
	return &Logger{zlog: zlog}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) { l.zlog.Debug().Msg(msg) }

// Info logs an info message
func (l *Logger) Info(msg string) { l.zlog.Info().Msg(msg) }

// Warn logs a warning message
func (l *Logger) Warn(msg string) { l.zlog.Warn().Msg(msg) }

// Error logs an error message
func (l *Logger) Error(msg string) { l.zlog.Error().Msg(msg) }

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
}

// TimedInfo logs a message together with an elapsed duration
func (l *Logger) TimedInfo(msg string, since time.Time) {
	l.zlog.Info().Dur("elapsed", time.Since(since)).Msg(msg)
}
