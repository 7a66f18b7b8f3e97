package log

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	logger     zerolog.Logger
	loggerOnce sync.Once
)

// initLogger initializes the global logger to write to stderr with timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
}

// SetLevel sets the minimum log level ("debug", "info", "warn", "error").
func SetLevel(level string) {
	initLogger()
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}
}

// SetConsole switches output to a human-readable console writer.
func SetConsole() {
	initLogger()
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func Debug(msg string, kv ...any) {
	initLogger()
	appendKVs(logger.Debug(), kv).Msg(msg)
}

func Info(msg string, kv ...any) {
	initLogger()
	appendKVs(logger.Info(), kv).Msg(msg)
}

func Warn(msg string, kv ...any) {
	initLogger()
	appendKVs(logger.Warn(), kv).Msg(msg)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	appendKVs(logger.Error().Err(err), kv).Msg(msg)
}

// appendKVs attaches alternating key/value pairs to an event.
// Non-string keys and a trailing odd value are ignored.
func appendKVs(ev *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	return ev
}
