package telemetry

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogFileMB   = 10
	maxLogBackups  = 5
	allLogFileName = "app.log"
	errLogFileName = "error.log"
)

// Config controls the process logger.
type Config struct {
	Level  string
	Format string
	Dir    string
}

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	files  []io.Closer
)

// Init builds the process logger: stdout plus, when Dir is set, a rotating
// all-levels file and a rotating errors-only file.
func Init(cfg Config) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = os.Stdout
	if cfg.Format == "pretty" {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}
	writers := []io.Writer{console}

	var opened []io.Closer
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return err
		}
		all := rotating(filepath.Join(cfg.Dir, allLogFileName))
		errs := rotating(filepath.Join(cfg.Dir, errLogFileName))
		writers = append(writers,
			zerolog.MultiLevelWriter(all),
			&levelFilter{w: errs, min: zerolog.ErrorLevel},
		)
		opened = append(opened, all, errs)
	}

	next := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()

	mu.Lock()
	prev := files
	logger = next
	files = opened
	mu.Unlock()

	for _, c := range prev {
		_ = c.Close()
	}
	return nil
}

// Close flushes and closes any rotating log files.
func Close() {
	mu.Lock()
	prev := files
	files = nil
	mu.Unlock()
	for _, c := range prev {
		_ = c.Close()
	}
}

// SetOutput replaces the logger with one writing JSON to w. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = zerolog.New(w).With().Timestamp().Logger()
	mu.Unlock()
}

// Debug writes a debug-level log line with the given fields.
func Debug(msg string, fields map[string]any) {
	write(zerolog.DebugLevel, msg, fields)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(zerolog.InfoLevel, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(zerolog.WarnLevel, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(zerolog.ErrorLevel, msg, fields)
}

func write(level zerolog.Level, msg string, fields map[string]any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.WithLevel(level).Fields(fields).Msg(msg)
}

func rotating(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogFileMB,
		MaxBackups: maxLogBackups,
	}
}

// levelFilter forwards only events at or above min.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f *levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}
