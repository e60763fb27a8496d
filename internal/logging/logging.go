package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
)

// Setup configures the process-wide slog logger. format selects between a
// colorized text handler (tint) and JSON output for log aggregation.
func Setup(level, format string) *slog.Logger {
	resolvedLevel := func() slog.Level {
		switch strings.ToLower(level) {
		case "debug":
			return slog.LevelDebug
		case "warn":
			return slog.LevelWarn
		case "error":
			return slog.LevelError
		default:
			return slog.LevelInfo
		}
	}

	replaceAttrs := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			source := a.Value.Any().(*slog.Source)
			source.File = filepath.Base(source.File)
		}
		return a
	}

	var logger *slog.Logger
	if strings.ToLower(format) == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource:   true,
			Level:       resolvedLevel(),
			ReplaceAttr: replaceAttrs}))
	} else {
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			AddSource:   true,
			Level:       resolvedLevel(),
			ReplaceAttr: replaceAttrs}))
	}

	slog.SetDefault(logger)

	return logger
}

// WithComponent returns a logger tagged with a component attribute.
func WithComponent(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

func Debug(msg string, args ...any) { slog.Debug(msg, args...) }
func Info(msg string, args ...any)  { slog.Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Error(msg, args...) }

// InfoWithComponent logs at info level tagged with a component attribute.
func InfoWithComponent(component, msg string, args ...any) {
	WithComponent(component).Info(msg, args...)
}

// WarnWithComponent logs at warn level tagged with a component attribute.
func WarnWithComponent(component, msg string, args ...any) {
	WithComponent(component).Warn(msg, args...)
}

// ErrorWithComponent logs at error level tagged with a component attribute.
func ErrorWithComponent(component, msg string, args ...any) {
	WithComponent(component).Error(msg, args...)
}
