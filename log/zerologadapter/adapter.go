// Package zerologadapter provides a logger that writes to a github.com/rs/zerolog.
package zerologadapter

import (
	"context"

	"github.com/jackc/pgcopy"
	"github.com/rs/zerolog"
)

type Logger struct {
	logger     zerolog.Logger
	withFunc   func(context.Context, zerolog.Context) zerolog.Context
	skipModule bool
}

// option options for configuring the logger when creating a new logger.
type option func(logger *Logger)

// WithContextFunc adds possibility to get request scoped values from the
// ctx.Context before logging lines.
func WithContextFunc(withFunc func(context.Context, zerolog.Context) zerolog.Context) option {
	return func(logger *Logger) {
		logger.withFunc = withFunc
	}
}

// WithoutPGCopyModule disables adding module:pgcopy to the default logger context.
func WithoutPGCopyModule() option {
	return func(logger *Logger) {
		logger.skipModule = true
	}
}

// NewLogger accepts a zerolog.Logger as input and returns a new custom
// logging facade as output.
func NewLogger(logger zerolog.Logger, options ...option) *Logger {
	l := Logger{
		logger: logger,
	}
	l.init(options)
	return &l
}

func (pl *Logger) init(options []option) {
	for _, opt := range options {
		opt(pl)
	}
	if !pl.skipModule {
		pl.logger = pl.logger.With().Str("module", "pgcopy").Logger()
	}
}

func (pl *Logger) Log(ctx context.Context, level pgcopy.LogLevel, msg string, data map[string]interface{}) {
	var zlevel zerolog.Level
	switch level {
	case pgcopy.LogLevelNone:
		zlevel = zerolog.NoLevel
	case pgcopy.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case pgcopy.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case pgcopy.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	case pgcopy.LogLevelDebug:
		zlevel = zerolog.DebugLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	zctx := pl.logger.With()
	if pl.withFunc != nil {
		zctx = pl.withFunc(ctx, zctx)
	}

	pgcopylog := zctx.Fields(data).Logger()
	pgcopylog.WithLevel(zlevel).Msg(msg)
}
