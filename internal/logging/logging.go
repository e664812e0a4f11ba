// Package logging provides zap-backed loggers for the matching pipeline.
// One process-wide logger writes to the console; each processed spreadsheet
// additionally gets its own log file under <data>/logs so a run over many
// files stays reviewable per file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu          sync.Mutex
	logsDir     string
	debugMode   bool
	root        *zap.SugaredLogger
	fileLoggers = make(map[string]*zap.SugaredLogger)
)

func init() {
	// Usable before Initialize: console only.
	root = newConsoleLogger(false).Sugar()
}

func newConsoleLogger(debug bool) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// Initialize sets up the logs directory and debug level. Called once at
// startup with the data directory.
func Initialize(dataDir string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	logsDir = dir
	debugMode = debug
	root = newConsoleLogger(debug).Sugar()
	return nil
}

// L returns the process-wide logger.
func L() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return root
}

// FileLogName derives the per-file log name from a spreadsheet filename:
// "orders.xlsx" becomes "orders.log".
func FileLogName(sheetFile string) string {
	base := filepath.Base(sheetFile)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".log"
}

// ForFile returns a logger that writes to both the console and the named log
// file under the logs directory. Loggers are cached per name; safe for
// concurrent use from the file worker pool.
func ForFile(sheetFile string) *zap.SugaredLogger {
	name := FileLogName(sheetFile)

	mu.Lock()
	defer mu.Unlock()

	if lg, ok := fileLoggers[name]; ok {
		return lg
	}
	if logsDir == "" {
		// Not initialized; degrade to console.
		return root
	}

	f, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		root.Warnw("cannot open log file, console only", "file", name, "error", err)
		fileLoggers[name] = root
		return root
	}

	level := zapcore.InfoLevel
	if debugMode {
		level = zapcore.DebugLevel
	}
	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(zapcore.NewConsoleEncoder(fileEnc), zapcore.Lock(f), level)

	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleEnc.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.Lock(os.Stderr), level)

	lg := zap.New(zapcore.NewTee(consoleCore, fileCore)).Sugar().With("sheet", filepath.Base(sheetFile))
	fileLoggers[name] = lg
	return lg
}

// Sync flushes all cached loggers. Called on shutdown; errors from syncing
// stderr are ignored.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	_ = root.Sync()
	for _, lg := range fileLoggers {
		_ = lg.Sync()
	}
}
