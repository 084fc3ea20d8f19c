// Package logrusadapter provides a logger that writes to a
// github.com/sirupsen/logrus.Logger log.
package logrusadapter

import (
	"context"

	"github.com/jackc/pgcopy"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	l logrus.FieldLogger
}

func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgcopy.LogLevel, msg string, data map[string]interface{}) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(data)
	} else {
		logger = l.l
	}

	switch level {
	case pgcopy.LogLevelTrace:
		logger.WithField("PGCOPY_LOG_LEVEL", level).Debug(msg)
	case pgcopy.LogLevelDebug:
		logger.Debug(msg)
	case pgcopy.LogLevelInfo:
		logger.Info(msg)
	case pgcopy.LogLevelWarn:
		logger.Warn(msg)
	case pgcopy.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("INVALID_PGCOPY_LOG_LEVEL", level).Error(msg)
	}
}
