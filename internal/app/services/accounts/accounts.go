// Package accounts implements registration and password login.
package accounts

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/greenledger/internal/app/store/users"
	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"github.com/dalemusser/greenledger/internal/app/system/auditlog"
	"github.com/dalemusser/greenledger/internal/app/system/authutil"
	"github.com/dalemusser/greenledger/internal/app/system/htmlsanitize"
	"github.com/dalemusser/greenledger/internal/app/system/inputval"
	"github.com/dalemusser/greenledger/internal/app/system/normalize"
	"github.com/dalemusser/greenledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Client-facing messages.
const (
	MsgFieldsRequired     = "All fields are required"
	MsgInvalidEmail       = "Invalid email format"
	MsgDuplicateEmail     = "User with this email already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgPasswordTooLong    = "Password must be at most 72 bytes"
	MsgUnavailable        = "Service temporarily unavailable"
)

// UserStore is the slice of the users store the service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// Auditor records authentication events. *auditlog.Logger satisfies it.
type Auditor interface {
	LoginSuccess(ctx context.Context, c auditlog.Client, userID primitive.ObjectID, email string)
	LoginFailedUserNotFound(ctx context.Context, c auditlog.Client, attemptedEmail string)
	LoginFailedWrongPassword(ctx context.Context, c auditlog.Client, userID primitive.ObjectID, email string)
	UserRegistered(ctx context.Context, c auditlog.Client, userID primitive.ObjectID, email string)
	RegisterFailedDuplicate(ctx context.Context, c auditlog.Client, email string)
}

// Recorder counts outcomes. *telemetry.Metrics satisfies it.
type Recorder interface {
	AuthOutcome(action, outcome string)
}

// Config tunes the service.
type Config struct {
	BcryptCost int
}

// Service registers users and authenticates them.
type Service struct {
	users   UserStore
	tokens  TokenIssuer
	audit   Auditor
	metrics Recorder
	cost    int
	log     *zap.Logger

	// dummyHash is compared against when the email is unknown so both
	// failure paths spend the same bcrypt time.
	dummyHash string
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string
	User  models.UserSummary
}

// New builds a Service. audit and metrics may be nil.
func New(users UserStore, tokens TokenIssuer, audit Auditor, metrics Recorder, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = authutil.DefaultCost
	}
	dummy, err := authutil.HashPasswordCost("greenledger-timing-equalizer", cost)
	if err != nil {
		log.Warn("could not build dummy password hash", zap.Error(err))
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		audit:     audit,
		metrics:   metrics,
		cost:      cost,
		log:       log,
		dummyHash: dummy,
	}
}

func (s *Service) outcome(action, outcome string) {
	if s.metrics != nil {
		s.metrics.AuthOutcome(action, outcome)
	}
}

// Register creates an account. No token is issued.
func (s *Service) Register(ctx context.Context, client auditlog.Client, in RegisterInput) (models.UserSummary, error) {
	name := normalize.Name(htmlsanitize.PlainText(in.Name))
	email := normalize.Email(in.Email)

	if name == "" || email == "" || in.Password == "" {
		s.outcome("register", "invalid_input")
		return models.UserSummary{}, apperr.New(apperr.InvalidInput, MsgFieldsRequired)
	}
	if !inputval.IsValidEmail(email) {
		s.outcome("register", "invalid_input")
		return models.UserSummary{}, apperr.New(apperr.InvalidInput, MsgInvalidEmail)
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		s.outcome("register", "error")
		return models.UserSummary{}, apperr.Wrap(apperr.StoreUnavailable, MsgUnavailable, err)
	}
	if exists {
		s.duplicate(ctx, client, email)
		return models.UserSummary{}, apperr.New(apperr.DuplicateEmail, MsgDuplicateEmail)
	}

	hash, err := authutil.HashPasswordCost(in.Password, s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			s.outcome("register", "invalid_input")
			return models.UserSummary{}, apperr.New(apperr.InvalidInput, MsgPasswordTooLong)
		}
		s.outcome("register", "error")
		return models.UserSummary{}, err
	}

	created, err := s.users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// The unique index catches a register that raced past EmailExists.
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			s.duplicate(ctx, client, email)
			return models.UserSummary{}, apperr.New(apperr.DuplicateEmail, MsgDuplicateEmail)
		}
		s.outcome("register", "error")
		return models.UserSummary{}, apperr.Wrap(apperr.StoreUnavailable, MsgUnavailable, err)
	}

	if s.audit != nil {
		s.audit.UserRegistered(ctx, client, created.ID, created.Email)
	}
	s.outcome("register", "success")
	s.log.Info("user registered", zap.String("user_id", created.ID.Hex()))
	return created.Summary(), nil
}

func (s *Service) duplicate(ctx context.Context, client auditlog.Client, email string) {
	if s.audit != nil {
		s.audit.RegisterFailedDuplicate(ctx, client, email)
	}
	s.outcome("register", "duplicate")
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, client auditlog.Client, in LoginInput) (LoginResult, error) {
	email := normalize.Email(in.Email)
	if email == "" || in.Password == "" {
		s.outcome("login", "invalid_input")
		return LoginResult{}, apperr.New(apperr.InvalidInput, MsgFieldsRequired)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			authutil.CheckPassword(in.Password, s.dummyHash)
			if s.audit != nil {
				s.audit.LoginFailedUserNotFound(ctx, client, email)
			}
			s.outcome("login", "invalid_credentials")
			return LoginResult{}, apperr.New(apperr.InvalidCredentials, MsgInvalidCredentials)
		}
		s.outcome("login", "error")
		return LoginResult{}, apperr.Wrap(apperr.StoreUnavailable, MsgUnavailable, err)
	}

	if !authutil.CheckPassword(in.Password, u.PasswordHash) {
		if s.audit != nil {
			s.audit.LoginFailedWrongPassword(ctx, client, u.ID, u.Email)
		}
		s.outcome("login", "invalid_credentials")
		return LoginResult{}, apperr.New(apperr.InvalidCredentials, MsgInvalidCredentials)
	}

	token, err := s.tokens.Issue(u.ID.Hex(), u.Email)
	if err != nil {
		s.outcome("login", "error")
		return LoginResult{}, err
	}

	if s.audit != nil {
		s.audit.LoginSuccess(ctx, client, u.ID, u.Email)
	}
	s.outcome("login", "success")
	return LoginResult{Token: token, User: u.Summary()}, nil
}
