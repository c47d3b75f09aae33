package core

// Logger is any service that can log app messages.
// Implementations may inspect trailing args for well-known types
// (eg. an error to report, or the acting user.User to attach).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
