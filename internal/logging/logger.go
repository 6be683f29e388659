// Package logging provides config-driven categorized logging for mealchat.
// Logs go to a single file because the chat UI owns the terminal.
// When debug_mode is off every category gets a no-op logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mealchat/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and configuration
	CategorySession Category = "session" // Submission cycles, failures
	CategoryAPI     Category = "api"     // Outbound chat requests
	CategoryUI      Category = "ui"      // TUI events
)

var (
	mu         sync.RWMutex
	base       = zap.NewNop()
	debugMode  bool
	categories map[string]bool
)

// Initialize builds the file logger described by cfg. With debug mode off
// it resets to no-op loggers and creates nothing on disk.
func Initialize(cfg config.LoggingConfig) error {
	if !cfg.DebugMode {
		SetLogger(nil)
		return nil
	}
	if cfg.File == "" {
		return fmt.Errorf("log file path required")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.Sampling = nil
	zc.OutputPaths = []string{cfg.File}
	zc.ErrorOutputPaths = []string{cfg.File}
	if cfg.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	mu.Lock()
	base = l
	debugMode = true
	categories = cfg.Categories
	mu.Unlock()

	Get(CategoryBoot).Info("logging initialized",
		zap.String("file", cfg.File),
		zap.String("level", level.String()),
		zap.String("format", zc.Encoding))
	return nil
}

// SetLogger installs l as the base logger for every category. Passing nil
// restores no-op logging.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		base = zap.NewNop()
		debugMode = false
	} else {
		base = l
		debugMode = true
	}
	categories = nil
}

// IsDebugMode returns whether logs are being written.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if !debugMode {
		return false
	}
	enabled, ok := categories[string(category)]
	return !ok || enabled
}

// Get returns the logger for category, or a no-op logger if the category
// is disabled.
func Get(category Category) *zap.Logger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop()
	}
	mu.RLock()
	defer mu.RUnlock()
	return base.Named(string(category))
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.RLock()
	l := base
	mu.RUnlock()
	return l.Sync()
}
