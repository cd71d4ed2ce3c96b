package logger

import corelogger "github.com/kilianp07/patrolsim/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

var defaultLevel = "info"

// SetLevel changes the minimum level of loggers created afterwards. Unknown
// levels are rejected.
func SetLevel(level string) error {
	if _, err := parseLevel(level); err != nil {
		return err
	}
	defaultLevel = level
	return nil
}

// New returns a Logger for the given component. The output format is selected
// with the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
