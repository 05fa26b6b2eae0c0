package gologger

import (
	"context"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	ReqIDKey ctxKey = "reqID"
	RunIDKey ctxKey = "runID"
)

var output = &switchWriter{w: os.Stderr}

func init() {
	configure(os.Stderr)
	l := NewLogger()
	zerolog.DefaultContextLogger = &l
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		function := ""
		fun := runtime.FuncForPC(pc)
		if fun != nil {
			funName := fun.Name()
			slash := strings.LastIndex(funName, "/")
			if slash > 0 {
				funName = funName[slash+1:]
			}
			function = " " + funName + "()"
		}
		return file + ":" + strconv.Itoa(line) + function
	}
}

// NewLogger logs to stderr, stdout is reserved for exercise output. Every
// logger shares one output, so Configure reaches loggers built at init.
func NewLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"

	logger := zerolog.New(output).With().Timestamp().Logger()

	logger = logger.Hook(CallerHook{})

	applyLevel()

	return logger
}

// Configure re-reads PRETTY, DEBUG and LOG_LEVEL, for after a .env file has
// been loaded.
func Configure() {
	configure(os.Stderr)
}

func configure(dst io.Writer) {
	if os.Getenv("PRETTY") == "1" {
		output.set(zerolog.ConsoleWriter{Out: dst})
	} else {
		output.set(dst)
	}
	applyLevel()
}

func applyLevel() {
	level := zerolog.InfoLevel
	if os.Getenv("DEBUG") == "1" {
		level = zerolog.DebugLevel
	} else if l, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && os.Getenv("LOG_LEVEL") != "" {
		level = l
	}
	zerolog.SetGlobalLevel(level)
}

type switchWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

// WithRunID returns a context whose logger carries the run ID of an exercise run.
func WithRunID(ctx context.Context, runID string) context.Context {
	ctx = context.WithValue(ctx, RunIDKey, runID)
	logger := zerolog.Ctx(ctx).With().Str("runID", runID).Logger()
	return logger.WithContext(ctx)
}

type CallerHook struct{}

func (h CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Caller(3)
}
