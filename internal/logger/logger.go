package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oggyb/cardswap/internal/config"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type Config struct {
	Level      string
	Format     Format
	Component  string
	WithSource bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

// Attribute keys whose values never reach the log output.
var redactedKeys = map[string]struct{}{
	"password":       {},
	"password_hash":  {},
	"purchase_token": {},
	"authorization":  {},
}

const redacted = "[REDACTED]"

type ctxKey struct{}

var global atomic.Pointer[slog.Logger]

// InitFromConfig builds the process logger from the LOG_* settings.
func InitFromConfig(c *config.Config) *slog.Logger {
	if c == nil {
		return Init(Config{})
	}
	return Init(Config{
		Level:      c.Log.Level,
		Format:     Format(c.Log.Format),
		Component:  c.Log.Component,
		WithSource: c.Log.Source,
	})
}

// Init replaces the process logger and slog's default with one built from c.
func Init(c Config) *slog.Logger {
	l := New(c)
	global.Store(l)
	slog.SetDefault(l)
	return l
}

// New builds a logger without touching global state.
func New(c Config) *slog.Logger {
	out := c.Output
	if out == nil {
		out = os.Stdout
	}
	textFormat := !strings.EqualFold(string(c.Format), string(FormatJSON))

	opts := &slog.HandlerOptions{
		Level:     parseLevel(c.Level),
		AddSource: c.WithSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if _, ok := redactedKeys[strings.ToLower(a.Key)]; ok {
				return slog.String(a.Key, redacted)
			}
			if textFormat && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.DateTime))
			}
			return a
		},
	}

	var h slog.Handler
	if textFormat {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}

	l := slog.New(h)
	if c.Component != "" {
		l = l.With("component", c.Component)
	}
	return l
}

// L returns the process logger, creating an info-level text logger on first use.
func L() *slog.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	l := New(Config{Level: "info", Format: FormatText})
	if global.CompareAndSwap(nil, l) {
		return l
	}
	return global.Load()
}

func With(args ...any) *slog.Logger { return L().With(args...) }

// NewContext stores a request-scoped logger in ctx.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, or the process logger.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, L())
}

// FromContextOr returns the request-scoped logger, or fallback when ctx has none.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	if fallback == nil {
		return L()
	}
	return fallback
}

func Debug(msg string, args ...any) { L().Debug(msg, args...) }
func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Warn(msg string, args ...any)  { L().Warn(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }

func parseLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
