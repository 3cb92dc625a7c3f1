package logger

import "fmt"

// Init sets up the default logger before config is available.
// InitStructured should be called once APP_ENV is known.
func Init() {
	InitStructured("")
}

// Info logs a printf-style informational message
func Info(format string, args ...interface{}) {
	zlog.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs a printf-style warning message
func Warn(format string, args ...interface{}) {
	zlog.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs a printf-style error message
func Error(format string, args ...interface{}) {
	zlog.Error().Msg(fmt.Sprintf(format, args...))
}
