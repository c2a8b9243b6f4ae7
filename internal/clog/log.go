// Package clog is conkas's logger. It follows the teacher's levelled,
// colorized logging convention (core-coin-go-core's log package) rather
// than reaching for the standard library's bare log.Logger: a level enum,
// caller-frame capture via go-stack/stack, and ANSI coloring via
// fatih/color when the output stream is a terminal.
package clog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
)

// Level is a logging verbosity level, lowest-to-highest severity ascending
// is reversed from syslog: Crit is the least verbose, Trace the most.
type Level int

const (
	LvlCrit Level = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

var levelNames = map[Level]string{
	LvlCrit:  "CRIT",
	LvlError: "ERRO",
	LvlWarn:  "WARN",
	LvlInfo:  "INFO",
	LvlDebug: "DBUG",
	LvlTrace: "TRCE",
}

var levelColors = map[Level]*color.Color{
	LvlCrit:  color.New(color.FgMagenta, color.Bold),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgWhite),
}

// Logger is a minimal levelled logger. The default Logger writes to stderr.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	color  bool
}

// New creates a Logger writing to w at the given verbosity level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{out: w, level: level, color: true}
}

// Root is the process-wide default logger, mirroring the teacher's
// package-level log.Root() convention.
var root = New(os.Stderr, LvlInfo)

// Root returns the process-wide logger.
func Root() *Logger { return root }

// SetLevel adjusts the verbosity of the root logger; wired to the CLI's
// -v/--verbosity flag (spec.md §6 Configuration).
func SetLevel(l Level) { root.level = l }

func (l *Logger) log(lvl Level, msg string, ctx ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lvl > l.level {
		return
	}
	call := stack.Caller(2)
	ts := time.Now().Format("15:04:05.000")
	name := levelNames[lvl]
	if l.color {
		name = levelColors[lvl].Sprint(name)
	}
	line := fmt.Sprintf("%s [%s] %s", ts, name, msg)
	for i := 0; i+1 < len(ctx); i += 2 {
		line += fmt.Sprintf(" %v=%v", ctx[i], ctx[i+1])
	}
	if lvl >= LvlDebug {
		line += fmt.Sprintf(" (%+v)", call)
	}
	fmt.Fprintln(l.out, line)
}

func (l *Logger) Crit(msg string, ctx ...interface{})  { l.log(LvlCrit, msg, ctx...) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LvlError, msg, ctx...) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log(LvlWarn, msg, ctx...) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.log(LvlInfo, msg, ctx...) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LvlDebug, msg, ctx...) }
func (l *Logger) Trace(msg string, ctx ...interface{}) { l.log(LvlTrace, msg, ctx...) }

func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
