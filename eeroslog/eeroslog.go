// Package eeroslog is the structured-logging ambient stack shared by every
// EEROS-Go component (spec.md §6): a thin, syslog-style wrapper around
// github.com/joeycumines/logiface, backed by github.com/joeycumines/izerolog
// and github.com/rs/zerolog, following the teacher's own logiface+izerolog
// pairing (logiface-zerolog/zerolog.go).
//
// Five levels are exposed - Trace, Info, Warn, Error, Fatal - mapped onto
// logiface's RFC 5424 levels as: Trace, Informational, Warning, Err, and a
// Fatal that logs then calls os.Exit(1), exactly as logiface.Logger.Fatal
// does.
package eeroslog

import (
	"os"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger is the handle every EEROS-Go component logs through.
type Logger struct {
	l       *logiface.Logger[*izerolog.Event]
	name    string
	limiter *catrate.Limiter
}

// New constructs a Logger named component, writing JSON lines to w via
// zerolog, at minimum level. A nil limiter disables WarnLimited throttling.
func New(component string, w zerolog.LevelWriter, level logiface.Level, limiter *catrate.Limiter) *Logger {
	zl := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	l := logiface.New[*izerolog.Event](
		izerolog.WithZerolog(zl),
		izerolog.L.WithLevel(level),
	)
	return &Logger{l: l, name: component, limiter: limiter}
}

// NewConsole builds a Logger writing human-readable lines to stderr via
// zerolog.ConsoleWriter, for interactive use (cmd/eeros-demo).
func NewConsole(component string, level logiface.Level, limiter *catrate.Limiter) *Logger {
	return New(component, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, level, limiter)
}

// Named returns a child Logger sharing this one's sink, level and limiter,
// recording component as its name. The component field written on each
// line is not changed: lines from the child still carry the parent's
// component value.
func (lg *Logger) Named(component string) *Logger {
	return &Logger{l: lg.l, name: component, limiter: lg.limiter}
}

// Trace logs msg at trace level.
func (lg *Logger) Trace(msg string) { lg.l.Trace().Log(msg) }

// Info logs msg at informational level.
func (lg *Logger) Info(msg string) { lg.l.Info().Log(msg) }

// Warn logs msg at warning level.
func (lg *Logger) Warn(msg string) { lg.l.Warning().Log(msg) }

// WarnErr logs msg at warning level with an attached error.
func (lg *Logger) WarnErr(msg string, err error) { lg.l.Warning().Err(err).Log(msg) }

// Error logs msg at error level with an attached error.
func (lg *Logger) Error(msg string, err error) { lg.l.Err().Err(err).Log(msg) }

// Fatal logs msg at fatal level with an attached error, then terminates the
// process, matching logiface.Logger.Fatal's own behavior.
func (lg *Logger) Fatal(msg string, err error) { lg.l.Fatal().Err(err).Log(msg) }

// WarnLimited logs msg at warning level, but only if the configured
// catrate.Limiter still allows category (spec.md's "two consecutive
// overruns raise a warning, rate-limited so a sustained fault does not
// flood the log" rule). A Logger built with a nil limiter always logs.
func (lg *Logger) WarnLimited(category, msg string) {
	if lg.limiter == nil {
		lg.l.Warning().Log(msg)
		return
	}
	if _, ok := lg.limiter.Allow(category); ok {
		lg.l.Warning().Log(msg)
	}
}

// DefaultOverrunLimiter returns a catrate.Limiter permitting at most one
// overrun warning per second and ten per minute, per category - loose
// enough to surface a sustained fault quickly, tight enough that a tick
// thread stuck overrunning for minutes cannot blow out the log.
func DefaultOverrunLimiter() *catrate.Limiter {
	return catrate.NewLimiter(map[time.Duration]int{
		time.Second: 1,
		time.Minute: 10,
	})
}
