package utils

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger behind the same three-method, printf-style
// shape the original stdlib-log-backed logger offered, so call sites across
// cmd/ packages don't need to learn zerolog's chained API directly.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger builds a console-rendered Logger. withTimestamp controls
// whether each line carries a timestamp field, matching the plain-text
// report style the CLIs print.
func NewLogger(withTimestamp bool) *Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: false}
	zl := zerolog.New(writer)
	if withTimestamp {
		zl = zl.With().Timestamp().Logger()
	}
	return &Logger{zl: zl}
}

func (lg *Logger) Info(format string, args ...any) {
	lg.zl.Info().Msg(fmt.Sprintf(format, args...))
}

func (lg *Logger) Warn(format string, args ...any) {
	lg.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

func (lg *Logger) Error(format string, args ...any) {
	lg.zl.Error().Msg(fmt.Sprintf(format, args...))
}
