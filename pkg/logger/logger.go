package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with the seat map's domain log helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout at LOG_LEVEL
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter creates a logger writing to w. Text output is used in gin's
// debug mode, JSON otherwise.
func NewWithWriter(w io.Writer, levelStr string) *Logger {
	level := getLogLevel(levelStr)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
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

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("request_id", requestID))}
}

// WithSessionID adds the booking session to logger context
func (l *Logger) WithSessionID(sessionID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("session_id", sessionID))}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithComponent tags every record with the emitting component
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("component", name))}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("request_id", c.GetString("request_id")),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("request_id", c.GetString("request_id")),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
	)
}

// Layout and geometry logging methods

// LogLayoutIssues reports nodes that were repaired or skipped while loading
// or rendering a layout
func (l *Logger) LogLayoutIssues(ctx context.Context, venueID string, count int) {
	if count == 0 {
		return
	}
	l.Logger.WarnContext(ctx,
		"Layout Issues",
		slog.String("venue_id", venueID),
		slog.Int("count", count),
	)
}

// LogGeometryComputed logs a geometry cache miss that was computed
func (l *Logger) LogGeometryComputed(ctx context.Context, venueID string, version uint64, shapes int, duration time.Duration) {
	l.Logger.DebugContext(ctx,
		"Geometry Computed",
		slog.String("venue_id", venueID),
		slog.Uint64("version", version),
		slog.Int("shapes", shapes),
		slog.Duration("duration", duration),
	)
}

// Hold logging methods

// LogHoldCreated logs when a hold is placed
func (l *Logger) LogHoldCreated(ctx context.Context, holdID, eventID, sessionID string, seats int) {
	l.Logger.InfoContext(ctx,
		"Hold Created",
		slog.String("hold_id", holdID),
		slog.String("event_id", eventID),
		slog.String("session_id", sessionID),
		slog.Int("seats", seats),
	)
}

// LogHoldRejected logs a hold request that lost to existing claims
func (l *Logger) LogHoldRejected(ctx context.Context, eventID, sessionID string, conflicts []string) {
	l.Logger.InfoContext(ctx,
		"Hold Rejected",
		slog.String("event_id", eventID),
		slog.String("session_id", sessionID),
		slog.Any("conflicts", conflicts),
	)
}

// LogHoldReleased logs when a hold is released by its session
func (l *Logger) LogHoldReleased(ctx context.Context, holdID, eventID string) {
	l.Logger.InfoContext(ctx,
		"Hold Released",
		slog.String("hold_id", holdID),
		slog.String("event_id", eventID),
	)
}

// LogHoldsExpired logs holds that timed out
func (l *Logger) LogHoldsExpired(ctx context.Context, holdIDs []string) {
	if len(holdIDs) == 0 {
		return
	}
	l.Logger.InfoContext(ctx,
		"Holds Expired",
		slog.Int("count", len(holdIDs)),
		slog.Any("hold_ids", holdIDs),
	)
}

// LogBookingConfirmed logs when a hold is turned into a booking
func (l *Logger) LogBookingConfirmed(ctx context.Context, bookingID, holdID, eventID string, seats int) {
	l.Logger.InfoContext(ctx,
		"Booking Confirmed",
		slog.String("booking_id", bookingID),
		slog.String("hold_id", holdID),
		slog.String("event_id", eventID),
		slog.Int("seats", seats),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
