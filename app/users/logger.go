package users

import "github.com/rs/zerolog"

// Logger is the logging capability the users components depend on.
type Logger interface {
	Log(message string)
}

// ZerologLogger writes Log messages at info level.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewLogger tags base with the users component.
func NewLogger(base zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: base.With().Str("component", "users").Logger()}
}

func (l *ZerologLogger) Log(message string) {
	l.logger.Info().Msg(message)
}
