// Package logger builds the process-wide zerolog logger.  JSON output in
// production, a console writer in dev.
package logger

import (
    "os"
    "strings"
    "time"

    "github.com/rs/zerolog"
)

// New returns a logger at the given level.  Unknown levels fall back to
// info.  The env parameter selects the output format only; it never
// changes what gets logged.
func New(level, env string) zerolog.Logger {
    zerolog.TimeFieldFormat = time.RFC3339

    var out = zerolog.New(os.Stdout)
    if strings.EqualFold(env, "dev") || strings.EqualFold(env, "development") {
        out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
    }
    return out.Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
    switch strings.ToLower(level) {
    case "debug":
        return zerolog.DebugLevel
    case "info":
        return zerolog.InfoLevel
    case "warn":
        return zerolog.WarnLevel
    case "error":
        return zerolog.ErrorLevel
    default:
        return zerolog.InfoLevel
    }
}
