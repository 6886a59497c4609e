package trust

import (
	"fmt"
	"io"
	"log"
	"os"
)

type MaskLevel int

const (
	Nothing   MaskLevel = 0x0
	ErrorMask MaskLevel = 0x1
	WarnMask  MaskLevel = 0x2
	InfoMask  MaskLevel = 0x4
	DebugMask MaskLevel = 0x8
	StatsMask MaskLevel = 0x10
)

// DefaultLevel prints everything except debug output.
const DefaultLevel = ErrorMask | WarnMask | InfoMask | StatsMask

// Logger is a leveled logger. The zero value is not usable, use New.
type Logger struct {
	out    *log.Logger
	prefix string
	level  MaskLevel
}

var std = New(os.Stderr, "", DefaultLevel)

// New creates a logger writing to w. Messages are tagged with prefix.
func New(w io.Writer, prefix string, level MaskLevel) *Logger {
	return &Logger{
		out:    log.New(w, "", log.LstdFlags),
		prefix: prefix,
		level:  level,
	}
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return New(io.Discard, "", Nothing)
}

// Default returns the process wide logger.
func Default() *Logger {
	return std
}

// SetDefault replaces the process wide logger.
func SetDefault(l *Logger) {
	std = l
}

// With returns a logger sharing the same output and level with an added
// subsystem prefix.
func (l *Logger) With(prefix string) *Logger {
	p := prefix
	if len(l.prefix) > 0 {
		p = l.prefix + "/" + prefix
	}
	return &Logger{out: l.out, prefix: p, level: l.level}
}

// SetLevel sets the mask and returns the previous one.
func (l *Logger) SetLevel(mask MaskLevel) MaskLevel {
	r := l.level
	l.level = mask
	return r
}

func (l *Logger) Level() MaskLevel {
	return l.level
}

func (l *Logger) Enabled(m MaskLevel) bool {
	return l.level&m != 0
}

func (l *Logger) logf(m MaskLevel, tag string, format string, params ...interface{}) {
	if l.level&m == 0 {
		return
	}
	msg := fmt.Sprintf(format, params...)
	if len(l.prefix) > 0 {
		l.out.Printf("%s [%s] %s", tag, l.prefix, msg)
		return
	}
	l.out.Printf("%s %s", tag, msg)
}

//Errorf prints the given log message (format + params) using the ErrorMask level.
func (l *Logger) Errorf(format string, params ...interface{}) {
	l.logf(ErrorMask, "ERROR:", format, params...)
}

//Warnf prints the given log message (format + params) using the WarnMask level.
func (l *Logger) Warnf(format string, params ...interface{}) {
	l.logf(WarnMask, " WARN:", format, params...)
}

//Infof prints the given log message (format + params) using the InfoMask level.
func (l *Logger) Infof(format string, params ...interface{}) {
	l.logf(InfoMask, " INFO:", format, params...)
}

//Debugf prints the given log message (format + params) using the DebugMask level.
func (l *Logger) Debugf(format string, params ...interface{}) {
	l.logf(DebugMask, "DEBUG:", format, params...)
}

//Statsf prints the given log message using the StatsMask level, tagged with
//the category of stats that is reported.
func (l *Logger) Statsf(category string, format string, params ...interface{}) {
	l.logf(StatsMask, "STATS["+category+"]:", format, params...)
}

func Errorf(format string, params ...interface{}) { std.Errorf(format, params...) }
func Warnf(format string, params ...interface{})  { std.Warnf(format, params...) }
func Infof(format string, params ...interface{})  { std.Infof(format, params...) }
func Debugf(format string, params ...interface{}) { std.Debugf(format, params...) }

// ParseLevel turns a level name into a mask that includes every more severe
// level, so "info" means error, warn and info.
func ParseLevel(s string) (MaskLevel, error) {
	switch s {
	case "none", "quiet":
		return Nothing, nil
	case "error":
		return ErrorMask, nil
	case "warn", "warning":
		return ErrorMask | WarnMask, nil
	case "info", "":
		return DefaultLevel, nil
	case "debug":
		return DefaultLevel | DebugMask, nil
	}
	return Nothing, fmt.Errorf("unknown log level %q", s)
}
