package logsvc

import (
	"context"
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
)

var reporters = map[string]func(...interface{}){
	rollbar.DEBUG: rollbar.Debug,
	rollbar.INFO:  rollbar.Info,
	rollbar.WARN:  rollbar.Warning,
	rollbar.ERR:   rollbar.Error,
	rollbar.CRIT:  rollbar.Critical,
}

// RollbarLogger prints every entry to std and reports it to Rollbar (once enabled).
// Debug entries are only printed in debug mode.
type RollbarLogger struct {
	std    *log.Logger
	debug  bool
	report func(level string, args ...interface{})
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(false)

	return &RollbarLogger{
		std:   std,
		debug: conf.Debug,
		report: func(level string, args ...interface{}) {
			reporters[level](args...)
		},
	}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// reportArgs turns an entry into Rollbar arguments. The first session.Identity found
// becomes the person of the item (through its context); other identities are dropped.
// expected fmt: msg | error, map[string]interface{}, session.Identity
func reportArgs(msg string, args []interface{}) []interface{} {
	var person *rollbar.Person
	out := make([]interface{}, 0, len(args)+2)
	out = append(out, msg)
	for _, arg := range args {
		if id, ok := arg.(session.Identity); ok {
			if person == nil {
				person = &rollbar.Person{Id: id.UID, Email: id.Email}
			}
			continue
		}
		out = append(out, arg)
	}
	if person != nil {
		out = append(out, rollbar.NewPersonContext(context.Background(), person))
	}
	return out
}

func (l *RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s %s", strings.ToUpper(level), msg)
	for _, arg := range args {
		if id, ok := arg.(session.Identity); ok {
			l.std.Printf("  account: %s <%s>", id.UID, id.Email)
			continue
		}
		l.std.Printf("  %+v", arg)
	}
}

func (l *RollbarLogger) log(level, msg string, args []interface{}) {
	l.report(level, reportArgs(msg, args)...)
	if level != rollbar.DEBUG || l.debug {
		l.print(level, msg, args)
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.log(rollbar.INFO, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.log(rollbar.WARN, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
