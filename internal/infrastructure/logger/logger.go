// Package logger provides the zerolog root logger and request-scoped children.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger.
type Options struct {
	Level   string
	Format  string // console or json
	Service string
	Writer  io.Writer
}

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

var (
	mu   sync.RWMutex
	root = zerolog.Nop()
)

// New builds a logger from opt without touching process state.
func New(opt Options) Logger {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(opt.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		ctx = ctx.Str("service", opt.Service)
	}
	return ctx.Logger()
}

// Init installs the root logger. Domain code reading zerolog.Ctx on a bare
// context falls back to it.
func Init(opt Options) Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log := New(opt)

	mu.Lock()
	root = log
	mu.Unlock()

	zerolog.DefaultContextLogger = &log
	return log
}

// Get returns the root logger.
func Get() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := root
	return &l
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithRequest attaches a child of the root logger carrying reqID to ctx.
func WithRequest(ctx context.Context, reqID string) context.Context {
	l := Get().With().Str("request_id", reqID).Logger()
	return l.WithContext(ctx)
}

// Named returns a child logger with a component field.
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
