package logbowl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Environment variable names
const (
	LogLevelEnvVar  = "PYBIN_LOG_LEVEL"
	LogFormatEnvVar = "PYBIN_LOG_CONSOLE_FORMATTER"
)

// Log formats
const (
	FormatEmoji = "emoji"
	FormatText  = "text"
	FormatJSON  = "json"
)

var domains = map[string]string{"system": "⚙️", "config": "🔩", "file": "📄", "io": "💾", "env": "🌿", "builder": "🛠️", "installer": "🧩", "archive": "📦", "tool": "🐍", "lock": "🔒", "status": "📋", "default": "❓"}
var actions = map[string]string{"init": "🌱", "start": "🚀", "stop": "🛑", "discover": "🔍", "read": "📖", "write": "📝", "execute": "▶️", "build": "🏗️", "copy": "📋", "chmod": "🔐", "clean": "🧹", "install": "🧩", "pack": "📦", "acquire": "🔒", "release": "🔓", "check": "🩺", "version": "🏷️", "finish": "🏁", "default": "⚙️"}
var statuses = map[string]string{"success": "✅", "failure": "❌", "error": "🔥", "warning": "⚠️", "info": "ℹ️", "debug": "🐞", "skip": "⏭️", "progress": "➡️", "notfound": "❓", "ok": "✅", "default": "➡️"}

func getEmoji(m map[string]string, key string) string {
	if val, ok := m[key]; ok {
		return val
	}
	return m["default"]
}

// Logger wraps hclog.Logger with a domain/action/status call shape.
// The zero value discards everything.
type Logger struct {
	hclog.Logger
	format string
}

// Create returns a Logger writing to stderr, configured from the environment.
func Create(name string) Logger {
	return New(name, os.Stderr)
}

// New returns a Logger writing to out. Level and format come from
// PYBIN_LOG_LEVEL and PYBIN_LOG_CONSOLE_FORMATTER.
func New(name string, out io.Writer) Logger {
	level := hclog.LevelFromString(strings.ToUpper(os.Getenv(LogLevelEnvVar)))
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	format := strings.ToLower(os.Getenv(LogFormatEnvVar))
	if format != FormatText && format != FormatJSON {
		format = FormatEmoji
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     out,
		JSONFormat: format == FormatJSON,
	}
	return Logger{Logger: hclog.New(opts), format: format}
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() Logger {
	return Logger{Logger: hclog.NewNullLogger(), format: FormatEmoji}
}

func (l Logger) log(level hclog.Level, domain, action, status, message string, args ...interface{}) {
	base := l.Logger
	if base == nil {
		base = hclog.NewNullLogger()
	}
	switch l.format {
	case FormatText:
		base.Log(level, fmt.Sprintf("[%s] %s", strings.ToUpper(domain), message), args...)
	case FormatJSON:
		base.With("domain", domain, "action", action, "status", status).Log(level, message, args...)
	default:
		base.Log(level, fmt.Sprintf("%s %s %s %s", getEmoji(domains, domain), getEmoji(actions, action), getEmoji(statuses, status), message), args...)
	}
}

func (l Logger) Info(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Info, domain, action, status, message, args...)
}
func (l Logger) Debug(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Debug, domain, action, status, message, args...)
}
func (l Logger) Warn(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Warn, domain, action, status, message, args...)
}
func (l Logger) Error(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Error, domain, action, status, message, args...)
}
