package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/datasaur/datasaur-mcp/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// LogBuffer is a thread-safe ring of recent log entries
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	limit   int
}

// NewLogBuffer creates a buffer keeping at most limit entries
func NewLogBuffer(limit int) *LogBuffer {
	if limit <= 0 {
		limit = 1000
	}
	return &LogBuffer{
		entries: make([]LogEntry, 0, limit),
		limit:   limit,
	}
}

// Add adds a log entry to the buffer
func (b *LogBuffer) Add(level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	})
	if len(b.entries) > b.limit {
		b.entries = b.entries[len(b.entries)-b.limit:]
	}
}

// GetRecent returns up to n entries, newest first
func (b *LogBuffer) GetRecent(n int) []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > len(b.entries) {
		n = len(b.entries)
	}

	result := make([]LogEntry, n)
	copy(result, b.entries[len(b.entries)-n:])

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// Clear clears the buffer
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make([]LogEntry, 0, b.limit)
}

// New creates a logger writing JSON to a rotated file (when configured) and
// colored text to stderr. Stdout is never used: it carries MCP frames in stdio mode.
func New(cfg config.LoggingConfig, buffer *LogBuffer) (*zap.Logger, error) {
	return newLogger(cfg, buffer, os.Stderr)
}

func newLogger(cfg config.LoggingConfig, buffer *LogBuffer, console io.Writer) (*zap.Logger, error) {
	if cfg.Output != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	jsonEncoderConfig := encoderConfig(zapcore.LowercaseLevelEncoder)
	consoleEncoderConfig := encoderConfig(zapcore.CapitalColorLevelEncoder)

	var cores []zapcore.Core

	if cfg.Output != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSize, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig), zapcore.AddSync(rotating), level))
	}

	if cfg.ConsoleOutput || len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.AddSync(console), level))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if buffer != nil {
		opts = append(opts, zap.Hooks(func(entry zapcore.Entry) error {
			buffer.Add(entry.Level.String(), entry.Message)
			return nil
		}))
	}

	return zap.New(zapcore.NewTee(cores...), opts...), nil
}

func encoderConfig(levelEncoder zapcore.LevelEncoder) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    levelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewDevelopment creates a console logger on stderr for short CLI commands
func NewDevelopment() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
