// Package assuanlog adapts assuan.Logger onto github.com/sirupsen/logrus,
// in the style of kata-proxy's proxyLog/logger() pattern: a package-level
// *logrus.Logger, entries built with WithFields for per-call context.
package assuanlog

import (
	"github.com/sirupsen/logrus"

	assuan "github.com/codacy-stress-test/libassuan"
)

// Logrus adapts a *logrus.Logger onto assuan.Logger.
type Logrus struct {
	Logger *logrus.Logger
}

// NewLogrus wraps logger, or a freshly constructed default logger if
// logger is nil.
func NewLogrus(logger *logrus.Logger) *Logrus {
	if logger == nil {
		logger = logrus.New()
	}
	return &Logrus{Logger: logger}
}

// Log satisfies assuan.Logger.
func (l *Logrus) Log(level assuan.Level, msg string, fields map[string]interface{}) {
	l.Logger.WithFields(logrus.Fields(fields)).Log(toLogrusLevel(level), msg)
}

func toLogrusLevel(level assuan.Level) logrus.Level {
	switch level {
	case assuan.LevelDebug:
		return logrus.DebugLevel
	case assuan.LevelInfo:
		return logrus.InfoLevel
	case assuan.LevelWarn:
		return logrus.WarnLevel
	case assuan.LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
