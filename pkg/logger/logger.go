// Package logger holds the process-wide zerolog logger.
//
// Call Init once from main. Everything else either receives a
// zerolog.Logger through its constructor or asks for a Component logger.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures Init.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else is info.
	Level string
	// Pretty switches to zerolog's console writer for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is added to every entry as "service" when set.
	Service string
}

var (
	mu    sync.Mutex
	root  *zerolog.Logger
	setup sync.Once
)

// Init builds the root logger. Later calls return the existing logger and
// ignore their options.
func Init(opts Options) zerolog.Logger {
	setup.Do(func() {
		l := build(opts)
		mu.Lock()
		root = &l
		mu.Unlock()
	})
	return Get()
}

func build(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	c := zerolog.New(w).Level(level).With().Timestamp().Caller()
	if opts.Service != "" {
		c = c.Str("service", opts.Service)
	}
	return c.Logger()
}

// Get returns the root logger. It panics before Init so a missing Init shows
// up at startup instead of as silently dropped logs.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		panic("logger: Get() called before Init()")
	}
	return *root
}

// Component returns a child logger tagged with "component", e.g. "auth".
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the root logger. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root = nil
	setup = sync.Once{}
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch lvl, err := zerolog.ParseLevel(s); {
	case err != nil, s == "", lvl < zerolog.TraceLevel, lvl > zerolog.ErrorLevel:
		return zerolog.InfoLevel
	default:
		return lvl
	}
}
