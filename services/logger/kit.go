package logsvc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/trezcool/uniguide/core"
)

// KitLogger writes logfmt lines through go-kit/log. Used by the client side tools.
type KitLogger struct {
	logger log.Logger
}

var _ core.Logger = (*KitLogger)(nil)

// NewKitLogger returns a logger writing to w the entries at or above minLevel
// (debug, info, warn or error; info when unknown).
func NewKitLogger(w io.Writer, minLevel string) *KitLogger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var opt level.Option
	switch strings.ToLower(minLevel) {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	case "none":
		opt = level.AllowNone()
	default:
		opt = level.AllowInfo()
	}
	return &KitLogger{logger: level.NewFilter(logger, opt)}
}

// NewNopLogger discards everything.
func NewNopLogger() *KitLogger {
	return &KitLogger{logger: log.NewNopLogger()}
}

// With returns a logger adding keyvals to every entry.
func (l KitLogger) With(keyvals ...interface{}) *KitLogger {
	return &KitLogger{logger: log.With(l.logger, keyvals...)}
}

func (l KitLogger) log(lvl func(log.Logger) log.Logger, msg string, args []interface{}) {
	keyvals := []interface{}{"msg", msg}
	for i, arg := range args {
		if err, ok := arg.(error); ok {
			keyvals = append(keyvals, "err", err)
			continue
		}
		keyvals = append(keyvals, fmt.Sprintf("arg%d", i), fmt.Sprintf("%+v", arg))
	}
	_ = lvl(l.logger).Log(keyvals...)
}

func (l KitLogger) Debug(msg string, args ...interface{}) { l.log(level.Debug, msg, args) }
func (l KitLogger) Info(msg string, args ...interface{})  { l.log(level.Info, msg, args) }
func (l KitLogger) Warn(msg string, args ...interface{})  { l.log(level.Warn, msg, args) }
func (l KitLogger) Error(msg string, args ...interface{}) { l.log(level.Error, msg, args) }

func (l KitLogger) Fatal(msg string, args ...interface{}) {
	l.log(level.Error, msg, args)
	os.Exit(1)
}
