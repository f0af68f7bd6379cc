package core

// Logger is any leveled logger. Extra args are logged along the message,
// implementations may give some of them (eg. errors, the context user) a special treatment.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
