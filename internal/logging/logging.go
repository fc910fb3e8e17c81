// Package logging holds the process-wide zap logger used by the engine,
// catalog sources, API and commands.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. Components take a Named child of it.
var Logger = zap.NewNop()

// Config selects level, encoding and destination.
// Environment keys are ALLOCATOR_LOG_LEVEL, ALLOCATOR_LOG_FORMAT and so on.
type Config struct {
	// Level is debug, info, warn or error; anything else means info
	Level string `json:"level" envconfig:"LEVEL"`

	// Format is console or json
	Format string `json:"format" envconfig:"FORMAT"`

	// Output is stdout, stderr or a file path; stdout is shared with
	// command output, so the CLI default is stderr
	Output string `json:"output" envconfig:"OUTPUT"`

	// Development adds stack traces to error entries
	Development bool `json:"development" envconfig:"DEVELOPMENT"`
}

// DefaultConfig logs info and above to stderr in console format
func DefaultConfig() Config {
	return Config{Level: "info", Format: "console", Output: "stderr"}
}

// Initialize builds a logger from cfg and installs it
func Initialize(cfg Config) error {
	sink, err := openSink(cfg.Output)
	if err != nil {
		return fmt.Errorf("log output %q: %w", cfg.Output, err)
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), sink, parseLevel(cfg.Level))
	Replace(zap.New(core, opts...))
	return nil
}

func parseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder

	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "", "stderr":
		return zapcore.Lock(os.Stderr), nil
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(f), nil
}

// Replace installs l as the process-wide logger; tests pass an observer core
func Replace(l *zap.Logger) {
	Logger = l
}

// Sync flushes buffered entries
func Sync() {
	_ = Logger.Sync()
}

// Named returns a logger scoped to a component, e.g. "engine" or "catalog.aws"
func Named(component string) *zap.Logger {
	return Logger.Named(component)
}

// Region is the field used for catalog region names
func Region(name string) zap.Field {
	return zap.String("region", name)
}

// Info logs at info level on the process-wide logger
func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

// Warn logs at warn level on the process-wide logger
func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

func init() {
	_ = Initialize(DefaultConfig())
}
