// internal/platform/logx/logx.go
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	levelOff
)

// String devuelve la etiqueta corta usada en cada línea.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelWarn:
		return "WRN"
	case LevelError:
		return "ERR"
	default:
		return "OFF"
	}
}

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

// sink es compartido entre un logger y todos sus clones With(), así SetLevel
// en el padre afecta a los componentes ya derivados.
type sink struct {
	mu  sync.Mutex
	lvl Level
	lg  *log.Logger
}

type simpleLogger struct {
	out   *sink
	scope []string // pares key=value fijos
}

// New crea un logger a stderr con el nivel de PRICESCOUT_LOG_LEVEL.
func New() Logger {
	return NewWithWriter(os.Stderr, parseLevel(os.Getenv("PRICESCOUT_LOG_LEVEL")))
}

// NewWithLevel creates a stderr logger with a specific log level.
func NewWithLevel(lvl Level) Logger {
	return NewWithWriter(os.Stderr, lvl)
}

// NewWithWriter creates a logger writing to w. Used by tests and by the
// server command when logs go to a file.
func NewWithWriter(w io.Writer, lvl Level) Logger {
	return &simpleLogger{
		out: &sink{lvl: lvl, lg: log.New(w, "", 0)},
	}
}

// NewSilent creates a logger that only outputs errors (quiet CLI mode).
func NewSilent() Logger {
	return NewWithLevel(LevelError)
}

// Nop descarta todo; útil en tests.
func Nop() Logger {
	return NewWithWriter(io.Discard, levelOff)
}

// ParseLevel is the exported form of the level parser used by config.
func ParseLevel(s string) Level { return parseLevel(s) }

func (s *simpleLogger) With(kv ...any) Logger {
	return &simpleLogger{
		out:   s.out,
		scope: append(append([]string{}, s.scope...), kvPairs(kv...)...),
	}
}

func (s *simpleLogger) SetLevel(lvl Level) {
	s.out.mu.Lock()
	defer s.out.mu.Unlock()
	s.out.lvl = lvl
}

func (s *simpleLogger) Debug(msg string, kv ...any) { s.log(LevelDebug, msg, kv...) }
func (s *simpleLogger) Info(msg string, kv ...any)  { s.log(LevelInfo, msg, kv...) }
func (s *simpleLogger) Warn(msg string, kv ...any)  { s.log(LevelWarn, msg, kv...) }
func (s *simpleLogger) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	kv = append([]any{"error", err.Error()}, kv...)
	s.log(LevelError, "", kv...)
}

func (s *simpleLogger) log(l Level, msg string, kv ...any) {
	s.out.mu.Lock()
	defer s.out.mu.Unlock()
	if l < s.out.lvl {
		return
	}

	ts := time.Now().Format("15:04:05")
	fields := append([]string{}, s.scope...)
	fields = append(fields, kvPairs(kv...)...)

	line := fmt.Sprintf("%s %s", ts, l)
	if strings.TrimSpace(msg) != "" {
		line += " " + msg
	}
	if len(fields) > 0 {
		line += " " + strings.Join(fields, " ")
	}
	s.out.lg.Println(line)
}

func kvPairs(kv ...any) []string {
	out := make([]string, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		k := kv[i]
		var v any = "(missing)"
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		out = append(out, fmt.Sprintf("%v=%s", k, formatValue(v)))
	}
	return out
}

// formatValue quotes values with whitespace so lines stay splittable.
func formatValue(v any) string {
	str := fmt.Sprintf("%v", v)
	if strings.ContainsAny(str, " \t\n\"") {
		return strconv.Quote(str)
	}
	return str
}

func parseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}
