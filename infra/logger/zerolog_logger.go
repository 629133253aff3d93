package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options tune the loggers created by New. They are set once at start-up
// from the logging configuration.
type Options struct {
	Level  string
	Format string
	Out    io.Writer
}

var (
	optsMu sync.RWMutex
	opts   = Options{Level: "info"}
)

// Configure sets the level and format used by subsequent loggers.
func Configure(o Options) error {
	if o.Level == "" {
		o.Level = "info"
	}
	if _, err := zerolog.ParseLevel(o.Level); err != nil {
		return err
	}
	optsMu.Lock()
	opts = o
	optsMu.Unlock()
	return nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger. Console output is used when
// APP_ENV is dev or the configured format is console. All logs include the
// provided component field.
func NewZerologLogger(component string) Logger {
	optsMu.RLock()
	o := opts
	optsMu.RUnlock()
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "dev" || o.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(o.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	z := zerolog.New(out).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
