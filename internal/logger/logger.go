package logger

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields is an alias so callers don't need to import logrus.
type Fields = logrus.Fields

// Logger is a centralized structured logger
type Logger struct {
	out *logrus.Logger
}

var (
	emailRegex  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	tokenRegex  = regexp.MustCompile(`eyJ[^\s"]+`)
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[^\s"]+`)
)

// std backs every Logger returned by New, so SetLevel applies process-wide.
var std = newLogrus(os.Stdout, os.Getenv("LOG_LEVEL"))

// New creates a Logger writing JSON lines to stdout.
func New() *Logger {
	return &Logger{out: std}
}

// SetLevel changes the level of every Logger created by New.
func SetLevel(level string) {
	std.SetLevel(parseLevel(level))
}

// NewWithOutput creates an independent Logger writing to w at the given level name.
func NewWithOutput(w io.Writer, level string) *Logger {
	return &Logger{out: newLogrus(w, level)}
}

func newLogrus(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "time",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	l.SetLevel(parseLevel(level))
	return l
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level string) {
	l.out.SetLevel(parseLevel(level))
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Anonymize replaces sensitive information in logs (emails, tokens)
func Anonymize(s string) string {
	s = emailRegex.ReplaceAllString(s, "[REDACTED_EMAIL]")
	s = bearerRegex.ReplaceAllString(s, "Bearer [REDACTED_TOKEN]")
	s = tokenRegex.ReplaceAllString(s, "[REDACTED_TOKEN]")
	return s
}

func (l *Logger) entry(module string, fields Fields) *logrus.Entry {
	e := logrus.NewEntry(l.out)
	if module != "" {
		e = e.WithField("module", module)
	}
	if len(fields) > 0 {
		e = e.WithFields(fields)
	}
	return e
}

// --- Convenient methods ---
func (l *Logger) Info(module, msg string) {
	l.entry(module, nil).Info(Anonymize(msg))
}

func (l *Logger) Debug(module, msg string) {
	l.entry(module, nil).Debug(Anonymize(msg))
}

func (l *Logger) Error(module, msg string, err error) {
	e := l.entry(module, nil)
	if err != nil {
		e = e.WithField("error", Anonymize(err.Error()))
	}
	e.Error(Anonymize(msg))
}

// InfoFields logs msg with extra structured fields.
func (l *Logger) InfoFields(module, msg string, fields Fields) {
	l.entry(module, fields).Info(Anonymize(msg))
}
