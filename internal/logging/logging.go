// Package logging holds the single package-level structured logger the validator, linker and
// execution engine log through, following wippyai-wasm-runtime's linker package: a lazily
// defaulted *zap.Logger an embedder can override with SetLogger, silent (zap.NewNop) otherwise.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the shared logger, defaulting to a no-op logger so the library is silent unless
// an embedder opts in via SetLogger.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger overrides the shared logger. Call before any Runtime operations; logging is never on
// the other side of a mutex-protected swap, since callers are expected to configure it once at
// startup.
func SetLogger(l *zap.Logger) {
	logger = l
}
