package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Logger is the process-wide logger. Nil until InitLogger runs, in which case
// the helpers below are no-ops.
var Logger *log.Logger

var prefixStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(lipgloss.Color("#0EA5E9")).
	Bold(true).
	Padding(0, 1).
	MarginRight(1)

// ParseLevel maps a LOG_LEVEL value to a level. Unknown values mean info.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// NewLogger builds a service logger on w. Debug mode forces the debug level
// and adds caller information.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	if IsDebug {
		level = log.DebugLevel
	}
	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportCaller:    IsDebug,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Prefix:          prefixStyle.Render("sflix-api"),
	})
	if f, ok := w.(*os.File); ok && f == os.Stderr {
		l.SetColorProfile(termenv.NewOutput(os.Stderr).EnvColorProfile())
	} else {
		l.SetColorProfile(termenv.Ascii)
	}
	return l
}

// InitLogger installs a stderr logger at the given LOG_LEVEL
func InitLogger(level string) {
	Logger = NewLogger(os.Stderr, ParseLevel(level))
	Logger.Debug("debug logging enabled")
}

func Debug(msg interface{}, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(fmt.Sprint(msg), keyvals...)
	}
}

func Info(msg interface{}, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(fmt.Sprint(msg), keyvals...)
	}
}

func Warn(msg interface{}, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(fmt.Sprint(msg), keyvals...)
	}
}

func Error(msg interface{}, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(fmt.Sprint(msg), keyvals...)
	}
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Debugf(format, args...)
	}
}
