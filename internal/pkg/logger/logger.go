package logger

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with service-specific functionality
type Logger struct {
	*zap.Logger
	serviceName string
}

// ContextKey for request context values
type ContextKey string

const (
	RequestIDKey      ContextKey = "request_id"
	UserIDKey         ContextKey = "user_id"
	ConversationIDKey ContextKey = "conversation_id"
)

// New creates a new logger instance
func New(serviceName, environment string, debug bool) (*Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// Add service metadata
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
		"env":     environment,
		"pid":     os.Getpid(),
	}

	zapLogger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger:      zapLogger,
		serviceName: serviceName,
	}, nil
}

// NewNop returns a logger that discards all output, for tests
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Named returns a named sub-logger
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		Logger:      l.Logger.Named(name),
		serviceName: l.serviceName,
	}
}

// WithContext returns a logger with context values
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := []zap.Field{}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}
	if conversationID, ok := ctx.Value(ConversationIDKey).(string); ok && conversationID != "" {
		fields = append(fields, zap.String("conversation_id", conversationID))
	}

	return &Logger{
		Logger:      l.With(fields...),
		serviceName: l.serviceName,
	}
}

// WithUser returns a logger with user context
func (l *Logger) WithUser(userID string) *Logger {
	return &Logger{
		Logger:      l.With(zap.String("user_id", userID)),
		serviceName: l.serviceName,
	}
}

// UserRegistered logs a successful registration
func (l *Logger) UserRegistered(userID, email string) {
	l.Info("user registered",
		zap.String("user_id", userID),
		zap.String("email", email),
	)
}

// ProfileUpdated logs a profile section update
func (l *Logger) ProfileUpdated(userID string, sections []string) {
	l.Info("profile updated",
		zap.String("user_id", userID),
		zap.Strings("sections", sections),
	)
}

// CatalogLoaded logs catalog load at startup
func (l *Logger) CatalogLoaded(path string, count int) {
	l.Info("product catalog loaded",
		zap.String("path", path),
		zap.Int("products", count),
	)
}

// ProfilesLoaded logs profile store load at startup
func (l *Logger) ProfilesLoaded(dir string, count int) {
	l.Info("customer profiles loaded",
		zap.String("dir", dir),
		zap.Int("profiles", count),
	)
}

// RecommendationCompleted logs the outcome of a catalog evaluation
func (l *Logger) RecommendationCompleted(userID string, catalogSize, recommended, threshold int, durationMs int64) {
	l.Info("recommendation completed",
		zap.String("user_id", userID),
		zap.Int("catalog_size", catalogSize),
		zap.Int("recommended", recommended),
		zap.Int("threshold", threshold),
		zap.Int64("duration_ms", durationMs),
	)
}

// ChatCompleted logs a handled chat turn
func (l *Logger) ChatCompleted(conversationID, provider string, durationMs int64) {
	l.Info("chat message handled",
		zap.String("conversation_id", conversationID),
		zap.String("provider", provider),
		zap.Int64("duration_ms", durationMs),
	)
}

// IntentDetected logs a structured intent extracted from model output
func (l *Logger) IntentDetected(conversationID, intent, subIntent string) {
	l.Info("intent detected",
		zap.String("conversation_id", conversationID),
		zap.String("intent", intent),
		zap.String("sub_intent", subIntent),
	)
}

// AgentResultReceived logs a completed agent poll
func (l *Logger) AgentResultReceived(eventID string, durationMs int64) {
	l.Info("agent result received",
		zap.String("event_id", eventID),
		zap.Int64("duration_ms", durationMs),
	)
}

// Helper field functions

// ErrorField creates an error field
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}

// DurationField creates a duration field
func DurationField(name string, d time.Duration) zap.Field {
	return zap.Duration(name, d)
}

// StringField creates a string field
func StringField(key, value string) zap.Field {
	return zap.String(key, value)
}

// IntField creates an int field
func IntField(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// BoolField creates a bool field
func BoolField(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}
