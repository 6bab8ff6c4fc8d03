// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/greenledger/internal/app/store/audit"
	"github.com/dalemusser/greenledger/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination values for Config fields.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (register, login).
	Auth string
}

// Store persists audit events. *audit.Store satisfies it.
type Store interface {
	Log(ctx context.Context, event audit.Event) error
}

// Client identifies the caller behind an audited action.
type Client struct {
	IP        string
	UserAgent string
}

// ClientFrom builds a Client from an HTTP request.
func ClientFrom(r *http.Request) Client {
	return Client{IP: ratelimit.ClientIP(r), UserAgent: r.UserAgent()}
}

// Logger writes audit events to MongoDB and zap according to Config.
// A nil *Logger is a no-op.
type Logger struct {
	store  Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) setting(category string) string {
	switch category {
	case audit.CategoryAuth:
		if l.config.Auth != "" {
			return l.config.Auth
		}
	}
	return ModeAll
}

// Log records an audit event. Store failures are logged, never returned.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.setting(event.Category)
	if setting == ModeOff {
		return
	}
	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func authEvent(c Client, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		IP:        c.IP,
		UserAgent: c.UserAgent,
		Success:   success,
	}
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, c Client, userID primitive.ObjectID, email string) {
	e := authEvent(c, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a login for an email with no account.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, c Client, attemptedEmail string) {
	e := authEvent(c, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a login with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, c Client, userID primitive.ObjectID, email string) {
	e := authEvent(c, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a login rejected by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, c Client, email string) {
	e := authEvent(c, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limit exceeded"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// UserRegistered logs a new account.
func (l *Logger) UserRegistered(ctx context.Context, c Client, userID primitive.ObjectID, email string) {
	e := authEvent(c, audit.EventUserRegistered, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// RegisterFailedDuplicate logs a registration for an email already in use.
func (l *Logger) RegisterFailedDuplicate(ctx context.Context, c Client, email string) {
	e := authEvent(c, audit.EventRegisterFailedDuplicate, false)
	e.FailureReason = "duplicate email"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}
