package accounts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	userstore "github.com/dalemusser/greenledger/internal/app/store/users"
	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"github.com/dalemusser/greenledger/internal/app/system/auditlog"
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/dalemusser/greenledger/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]models.User
	err     error
	// raceDup makes Create report a duplicate even though EmailExists said no.
	raceDup bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]models.User{}}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (f *fakeUsers) Create(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raceDup {
		return models.User{}, userstore.ErrDuplicateEmail
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return models.User{}, userstore.ErrDuplicateEmail
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byEmail)
}

type recordedEvent struct {
	kind  string
	email string
}

type fakeAudit struct {
	events []recordedEvent
}

func (a *fakeAudit) LoginSuccess(_ context.Context, _ auditlog.Client, _ primitive.ObjectID, email string) {
	a.events = append(a.events, recordedEvent{"login_success", email})
}
func (a *fakeAudit) LoginFailedUserNotFound(_ context.Context, _ auditlog.Client, email string) {
	a.events = append(a.events, recordedEvent{"user_not_found", email})
}
func (a *fakeAudit) LoginFailedWrongPassword(_ context.Context, _ auditlog.Client, _ primitive.ObjectID, email string) {
	a.events = append(a.events, recordedEvent{"wrong_password", email})
}
func (a *fakeAudit) UserRegistered(_ context.Context, _ auditlog.Client, _ primitive.ObjectID, email string) {
	a.events = append(a.events, recordedEvent{"registered", email})
}
func (a *fakeAudit) RegisterFailedDuplicate(_ context.Context, _ auditlog.Client, email string) {
	a.events = append(a.events, recordedEvent{"duplicate", email})
}

func (a *fakeAudit) last() recordedEvent {
	if len(a.events) == 0 {
		return recordedEvent{}
	}
	return a.events[len(a.events)-1]
}

type fixture struct {
	svc    *Service
	users  *fakeUsers
	audit  *fakeAudit
	tokens *auth.Tokens
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	tokens, err := auth.NewTokens("accounts-test-secret-0123456789abcdef")
	require.NoError(t, err)
	users := newFakeUsers()
	audit := &fakeAudit{}
	svc := New(users, tokens, audit, nil, Config{BcryptCost: bcrypt.MinCost}, nil)
	return fixture{svc: svc, users: users, audit: audit, tokens: tokens}
}

var client = auditlog.Client{IP: "127.0.0.1", UserAgent: "go-test"}

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, client, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEmpty(t, u.ID)

	res, err := f.svc.Login(ctx, client, LoginInput{Email: "ada@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, u, res.User)

	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "login_success", f.audit.last().kind)
}

func TestRegister_StoresHashNotPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), client, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "s3cret"})
	require.NoError(t, err)

	stored := f.users.byEmail["ada@example.com"]
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "x"}, MsgFieldsRequired},
		{"blank name", RegisterInput{Name: "   ", Email: "a@example.com", Password: "x"}, MsgFieldsRequired},
		{"markup-only name", RegisterInput{Name: "<b></b>", Email: "a@example.com", Password: "x"}, MsgFieldsRequired},
		{"missing email", RegisterInput{Name: "A", Password: "x"}, MsgFieldsRequired},
		{"missing password", RegisterInput{Name: "A", Email: "a@example.com"}, MsgFieldsRequired},
		{"no at sign", RegisterInput{Name: "A", Email: "example.com", Password: "x"}, MsgInvalidEmail},
		{"no dot in domain", RegisterInput{Name: "A", Email: "a@example", Password: "x"}, MsgInvalidEmail},
		{"space inside", RegisterInput{Name: "A", Email: "a b@example.com", Password: "x"}, MsgInvalidEmail},
		{"password too long", RegisterInput{Name: "A", Email: "a@example.com", Password: strings.Repeat("p", 73)}, MsgPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Register(context.Background(), client, tt.in)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.InvalidInput), "kind = %v", apperr.KindOf(err))
			assert.Equal(t, tt.msg, apperr.Message(err))
			assert.Zero(t, f.users.count())
		})
	}
}

func TestRegister_StripsMarkupFromName(t *testing.T) {
	f := newFixture(t)
	u, err := f.svc.Register(context.Background(), client, RegisterInput{
		Name: "  <script>x</script>Ada   <i>Lovelace</i> ", Email: "ada@example.com", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.Name)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, client, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, client, RegisterInput{Name: "Other", Email: "ADA@Example.com", Password: "pw2"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.DuplicateEmail))
	assert.Equal(t, MsgDuplicateEmail, apperr.Message(err))
	assert.Equal(t, 1, f.users.count())
	assert.Equal(t, "duplicate", f.audit.last().kind)
}

func TestRegister_DuplicateFromIndexRace(t *testing.T) {
	f := newFixture(t)
	f.users.raceDup = true

	_, err := f.svc.Register(context.Background(), client, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	assert.True(t, apperr.Is(err, apperr.DuplicateEmail))
}

func TestRegister_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.users.err = errors.New("connection refused")

	_, err := f.svc.Register(context.Background(), client, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	assert.True(t, apperr.Is(err, apperr.StoreUnavailable))
	assert.NotContains(t, apperr.Message(err), "connection refused")
}

func TestLogin_FailuresShareMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, client, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "right"})
	require.NoError(t, err)

	_, wrongPw := f.svc.Login(ctx, client, LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, "wrong_password", f.audit.last().kind)

	_, unknown := f.svc.Login(ctx, client, LoginInput{Email: "ghost@example.com", Password: "right"})
	assert.Equal(t, "user_not_found", f.audit.last().kind)

	for _, err := range []error{wrongPw, unknown} {
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.InvalidCredentials))
		assert.Equal(t, MsgInvalidCredentials, apperr.Message(err))
	}
}

func TestLogin_EmailCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, client, RegisterInput{Name: "Ada", Email: "Ada@Example.com", Password: "pw"})
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, client, LoginInput{Email: " ADA@EXAMPLE.COM ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.User.Email)
}

func TestLogin_EmptyHashNeverMatches(t *testing.T) {
	f := newFixture(t)
	f.users.byEmail["nohash@example.com"] = models.User{ID: primitive.NewObjectID(), Email: "nohash@example.com"}

	_, err := f.svc.Login(context.Background(), client, LoginInput{Email: "nohash@example.com", Password: "anything"})
	assert.True(t, apperr.Is(err, apperr.InvalidCredentials))
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), client, LoginInput{Email: "ada@example.com"})
	assert.True(t, apperr.Is(err, apperr.InvalidInput))
	assert.Equal(t, MsgFieldsRequired, apperr.Message(err))
}

func TestLogin_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.users.err = errors.New("timeout")
	_, err := f.svc.Login(context.Background(), client, LoginInput{Email: "ada@example.com", Password: "pw"})
	assert.True(t, apperr.Is(err, apperr.StoreUnavailable))
}
