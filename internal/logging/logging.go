// Package logging provides categorized logging for flowsmith, backed by zap.
// Library packages log through category helpers; the binary installs the real
// logger at startup via SetLogger. Until then every call is a silent no-op,
// so nothing in the core ever nil-checks a logger.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// Category names a subsystem log scope.
type Category string

const (
	CategoryBoot     Category = "boot"     // startup, config loading
	CategoryResolver Category = "resolver" // executable resolution, path cache
	CategoryProcess  Category = "process"  // subprocess lifecycle, cancellation
	CategoryStream   Category = "stream"   // wire protocol parsing
	CategoryProvider Category = "provider" // router and backend pipelines
)

var (
	mu   sync.RWMutex
	root = zap.NewNop()
)

// SetLogger installs the process-wide base logger. Call once at startup.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	root = l
	mu.Unlock()
}

// Get returns a sugared logger scoped to the category.
func Get(c Category) *zap.SugaredLogger {
	mu.RLock()
	l := root
	mu.RUnlock()
	return l.Named(string(c)).Sugar()
}

// Convenience helpers, one set per category actually used by the core.

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Infof(format, args...)
}

// BootError logs an error to the boot category.
func BootError(format string, args ...interface{}) {
	Get(CategoryBoot).Errorf(format, args...)
}

// Resolver logs to the resolver category.
func Resolver(format string, args ...interface{}) {
	Get(CategoryResolver).Infof(format, args...)
}

// ResolverDebug logs debug to the resolver category.
func ResolverDebug(format string, args ...interface{}) {
	Get(CategoryResolver).Debugf(format, args...)
}

// Process logs to the process category.
func Process(format string, args ...interface{}) {
	Get(CategoryProcess).Infof(format, args...)
}

// ProcessDebug logs debug to the process category.
func ProcessDebug(format string, args ...interface{}) {
	Get(CategoryProcess).Debugf(format, args...)
}

// ProcessWarn logs warning to the process category.
func ProcessWarn(format string, args ...interface{}) {
	Get(CategoryProcess).Warnf(format, args...)
}

// StreamDebug logs debug to the stream category.
func StreamDebug(format string, args ...interface{}) {
	Get(CategoryStream).Debugf(format, args...)
}

// Provider logs to the provider category.
func Provider(format string, args ...interface{}) {
	Get(CategoryProvider).Infof(format, args...)
}

// ProviderDebug logs debug to the provider category.
func ProviderDebug(format string, args ...interface{}) {
	Get(CategoryProvider).Debugf(format, args...)
}

// ProviderWarn logs warning to the provider category.
func ProviderWarn(format string, args ...interface{}) {
	Get(CategoryProvider).Warnf(format, args...)
}

// ProviderError logs error to the provider category.
func ProviderError(format string, args ...interface{}) {
	Get(CategoryProvider).Errorf(format, args...)
}
