package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	logDir  = ".buildhealth/logs"
	logName = "buildhealth.log"
)

// Config selects where logs go. With an empty Root, logs are written as text
// to Console (stderr when nil) instead of a file, which suits CI containers.
type Config struct {
	Root    string
	Debug   bool
	Console io.Writer
}

var (
	mu      sync.RWMutex
	global  = discard()
	logFile *os.File
	logPath string
)

func Setup(cfg Config) (func() error, error) {
	level := slog.LevelInfo
	addSource := false
	if cfg.Debug {
		level = slog.LevelDebug
		addSource = true
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				t := a.Value.Time().UTC()
				a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
			}
			return a
		},
	}

	if cfg.Root == "" {
		w := cfg.Console
		if w == nil {
			w = os.Stderr
		}
		if !cfg.Debug {
			opts.Level = slog.LevelWarn
		}
		install(slog.New(slog.NewTextHandler(w, opts)), nil, "")
		return reset, nil
	}

	dir := filepath.Join(filepath.Clean(cfg.Root), logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		install(discard(), nil, "")
		return nil, err
	}

	path := filepath.Join(dir, logName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		install(discard(), nil, "")
		return nil, err
	}

	l := slog.New(slog.NewJSONHandler(f, opts))
	install(l, f, path)

	l.Info("logger.initialized", "path", path, "debug", cfg.Debug)
	return reset, nil
}

func install(l *slog.Logger, f *os.File, path string) {
	mu.Lock()
	defer mu.Unlock()
	global = l
	logFile = f
	logPath = path
	if l == nil {
		global = discard()
	}
}

func reset() error {
	mu.Lock()
	defer mu.Unlock()

	var cerr error
	if logFile != nil {
		cerr = logFile.Close()
	}
	logFile = nil
	logPath = ""
	global = discard()
	return cerr
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Path is the log file in use; empty when logging to the console.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

func IsReady() error {
	mu.RLock()
	defer mu.RUnlock()
	if logFile == nil || logPath == "" {
		return errors.New("logger not initialized")
	}
	return nil
}
