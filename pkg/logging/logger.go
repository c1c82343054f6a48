package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	LevelTrace LogLevel = -8
	LevelDebug LogLevel = LogLevel(slog.LevelDebug)
	LevelInfo  LogLevel = LogLevel(slog.LevelInfo)
	LevelWarn  LogLevel = LogLevel(slog.LevelWarn)
	LevelError LogLevel = LogLevel(slog.LevelError)
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level    LogLevel `json:"level"`
	Format   string   `json:"format"`    // "json" or "text"
	Output   string   `json:"output"`    // "stdout", "stderr", or "file"
	FilePath string   `json:"file_path"` // used when Output is "file"
	Source   bool     `json:"source"`    // add caller file:line
}

// DefaultLogConfig returns sensible default logging configuration
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  LevelInfo,
		Format: "json",
		Output: "stdout",
	}
}

// Logger provides structured logging on top of log/slog.
type Logger struct {
	config  LogConfig
	slogger *slog.Logger
	file    *os.File
	mu      sync.Mutex
}

// NewLogger creates a new structured logger
func NewLogger(config LogConfig) (*Logger, error) {
	l := &Logger{config: config}

	var writer io.Writer
	switch config.Output {
	case "", "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	case "file":
		if err := l.setupFileLogging(); err != nil {
			return nil, fmt.Errorf("failed to setup file logging: %w", err)
		}
		writer = l.file
	default:
		return nil, fmt.Errorf("unknown log output %q", config.Output)
	}

	l.slogger = slog.New(newHandler(writer, config))
	return l, nil
}

// NewWithWriter builds a logger writing to w; handy for tests and CLIs.
func NewWithWriter(w io.Writer, config LogConfig) *Logger {
	return &Logger{config: config, slogger: slog.New(newHandler(w, config))}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard, DefaultLogConfig())
}

func newHandler(w io.Writer, config LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     slog.Level(config.Level),
		AddSource: config.Source,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && LogLevel(lvl) <= LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	if config.Format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// setupFileLogging creates log directory and file
func (l *Logger) setupFileLogging() error {
	if l.config.FilePath == "" {
		return fmt.Errorf("file path is required for file logging")
	}
	dir := filepath.Dir(l.config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(l.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.file = file
	return nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Slog exposes the underlying *slog.Logger for libraries that take one.
func (l *Logger) Slog() *slog.Logger { return l.slogger }

// WithComponent returns a logger tagging every entry with component.
func (l *Logger) WithComponent(component string) *ComponentLogger {
	return &ComponentLogger{logger: l, component: component}
}

// ComponentLogger provides component-specific logging
type ComponentLogger struct {
	logger    *Logger
	component string
}

func (l *Logger) Trace(msg string, fields ...Field) { l.log(context.Background(), LevelTrace, msg, nil, fields) }
func (l *Logger) Debug(msg string, fields ...Field) { l.log(context.Background(), LevelDebug, msg, nil, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(context.Background(), LevelInfo, msg, nil, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(context.Background(), LevelWarn, msg, nil, fields) }

func (l *Logger) Error(msg string, err error, fields ...Field) {
	l.log(context.Background(), LevelError, msg, err, fields)
}

func (cl *ComponentLogger) Debug(msg string, fields ...Field) {
	cl.logger.log(context.Background(), LevelDebug, msg, nil, cl.with(fields))
}

func (cl *ComponentLogger) Info(msg string, fields ...Field) {
	cl.logger.log(context.Background(), LevelInfo, msg, nil, cl.with(fields))
}

func (cl *ComponentLogger) Warn(msg string, fields ...Field) {
	cl.logger.log(context.Background(), LevelWarn, msg, nil, cl.with(fields))
}

func (cl *ComponentLogger) Error(msg string, err error, fields ...Field) {
	cl.logger.log(context.Background(), LevelError, msg, err, cl.with(fields))
}

// InfoContext logs with request-scoped values (request id) pulled from ctx.
func (cl *ComponentLogger) InfoContext(ctx context.Context, msg string, fields ...Field) {
	cl.logger.log(ctx, LevelInfo, msg, nil, cl.with(fields))
}

func (cl *ComponentLogger) with(fields []Field) []Field {
	return append(fields, String("component", cl.component))
}

type ctxKey string

// RequestIDKey is the context key the HTTP layer stores request ids under.
const RequestIDKey ctxKey = "request_id"

// WithRequestID returns ctx carrying id for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func (l *Logger) log(ctx context.Context, level LogLevel, msg string, err error, fields []Field) {
	if !l.slogger.Enabled(ctx, slog.Level(level)) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+2)
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	l.slogger.LogAttrs(ctx, slog.Level(level), msg, attrs...)
}

// ParseLevel maps config strings (trace, debug, info, warn, error) to a level.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors
func String(key, value string) Field                 { return Field{Key: key, Value: value} }
func Int(key string, value int) Field                { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field        { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field              { return Field{Key: key, Value: value} }
func Any(key string, value interface{}) Field        { return Field{Key: key, Value: value} }
func Strings(key string, value []string) Field       { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value.String()} }
