package gatlog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
)

// SetOutput redirects the base logger's writer. Primarily used by tests
// that want to capture log output.
func SetOutput(w zerolog.ConsoleWriter) {
	mu.Lock()
	defer mu.Unlock()
	base = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel adjusts the minimum level the base logger emits.
func SetLevel(level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	base = base.Level(level)
}

// Component returns a logger scoped to the named solver component (e.g.
// "powerflow.newton", "opf.socp", "reliability.mc"), matching the
// per-iteration diagnostics the reference implementation emits via
// tracing spans in gat-algo.
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return base.With().Str("component", name).Logger()
}
