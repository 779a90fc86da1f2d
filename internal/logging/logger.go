package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how the CLI logs
type Options struct {
	Level string
	// File switches logging to a rotating JSON log file
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Setup configures the standard logrus logger. Logs go to stderr so they never
// mix with rendered results on stdout. The returned closer flushes the log file.
func Setup(opts Options) (io.Closer, error) {
	return configure(logrus.StandardLogger(), opts, os.Stderr)
}

func configure(logger *logrus.Logger, opts Options, stderr io.Writer) (io.Closer, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	if opts.File == "" {
		logger.SetOutput(stderr)
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
		return nopCloser{}, nil
	}

	maxSize := opts.MaxSizeMB
	if maxSize == 0 {
		maxSize = 10
	}
	maxBackups := opts.MaxBackups
	if maxBackups == 0 {
		maxBackups = 5
	}

	rotating := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	}

	logger.SetOutput(rotating)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	return rotating, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ContextKey type for context keys
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)

// GenerateRequestID generates a new request ID
func GenerateRequestID() string {
	return uuid.New().String()
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// FromContext returns a log entry carrying the request ID, if any
func FromContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if requestID := GetRequestID(ctx); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	return entry
}

// LogAPICall logs API call information
func LogAPICall(entry *logrus.Entry, method, path string, statusCode int, duration time.Duration, err error) {
	fields := logrus.Fields{
		"method":      method,
		"path":        path,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
		"type":        "api_call",
	}

	if err != nil {
		fields["error"] = err.Error()
		entry.WithFields(fields).Debug("api_call_failed")
		return
	}
	entry.WithFields(fields).Debug("api_call_success")
}
