package core

// Logger is the app-wide logging contract. Errors caught at call sites as a
// last resort are reported through it and never re-panicked.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
