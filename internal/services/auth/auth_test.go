package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	customjwt "github.com/magabrotheeeer/tour-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-booking/internal/lib/password"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/rabbitmq"
	services "github.com/magabrotheeeer/tour-booking/internal/services/auth"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *UserRepoMock) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	args := m.Called(ctx, id, tokenHash, expires)
	return args.Error(0)
}

func (m *UserRepoMock) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepoMock) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string, changedAt time.Time) (*models.User, error) {
	args := m.Called(ctx, tokenHash, now, passwordHash, changedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string, changedAt time.Time) (*models.User, error) {
	args := m.Called(ctx, id, passwordHash, changedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	args := m.Called(ctx, to, name, resetURL)
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	args := m.Called(ctx, routingKey, message)
	return args.Error(0)
}

var now = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	users     *UserRepoMock
	maker     *JwtMakerMock
	mailer    *MailerMock
	publisher *PublisherMock
	hasher    *password.Hasher
	svc       *services.AuthService
}

func newFixture() *fixture {
	f := &fixture{
		users:     new(UserRepoMock),
		maker:     new(JwtMakerMock),
		mailer:    new(MailerMock),
		publisher: new(PublisherMock),
		hasher:    password.NewHasher(4),
	}
	f.svc = services.NewAuthService(f.users, f.maker, f.hasher, f.mailer, newNoopLogger(),
		services.WithClock(func() time.Time { return now }),
		services.WithPublisher(f.publisher))
	return f
}

func (f *fixture) hash(t *testing.T, plain string) string {
	t.Helper()
	h, err := f.hasher.Hash(plain)
	require.NoError(t, err)
	return h
}

func claimsAt(id string, iat time.Time) *customjwt.CustomClaims {
	return &customjwt.CustomClaims{
		ID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(time.Hour)),
		},
	}
}

func TestAuthService_Signup(t *testing.T) {
	f := newFixture()
	id := primitive.NewObjectID()

	f.users.On("Insert", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "jonas@example.com" &&
			u.Role == models.RoleUser &&
			u.Active &&
			u.Password != "pass1234" &&
			f.hasher.Compare(u.Password, "pass1234") == nil
	})).Return(id, nil).Once()
	f.publisher.On("Publish", mock.Anything, rabbitmq.WelcomeRoutingKey, models.WelcomeEmail{
		Email: "jonas@example.com",
		Name:  "Jonas",
		URL:   "http://localhost/me",
	}).Return(nil).Once()
	f.maker.On("GenerateToken", id.Hex()).Return("signed-token", nil).Once()

	user, token, err := f.svc.Signup(context.Background(), services.SignupInput{
		Name:       "Jonas",
		Email:      "Jonas@Example.com",
		Password:   "pass1234",
		WelcomeURL: "http://localhost/me",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, id, user.ID)
	f.users.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestAuthService_Signup_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture()
	id := primitive.NewObjectID()
	f.users.On("Insert", mock.Anything, mock.Anything).Return(id, nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	f.maker.On("GenerateToken", id.Hex()).Return("signed-token", nil).Once()

	_, token, err := f.svc.Signup(context.Background(), services.SignupInput{Name: "Jonas", Email: "jonas@example.com", Password: "pass1234"})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
}

func TestAuthService_Signup_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    services.SignupInput
		setup    func(f *fixture)
		wantKind apperr.Kind
	}{
		{
			name:     "invalid email",
			input:    services.SignupInput{Name: "Jonas", Email: "not-an-email", Password: "pass1234"},
			setup:    func(_ *fixture) {},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "missing name",
			input:    services.SignupInput{Email: "jonas@example.com", Password: "pass1234"},
			setup:    func(_ *fixture) {},
			wantKind: apperr.KindValidation,
		},
		{
			name:  "duplicate email",
			input: services.SignupInput{Name: "Jonas", Email: "jonas@example.com", Password: "pass1234"},
			setup: func(f *fixture) {
				f.users.On("Insert", mock.Anything, mock.Anything).
					Return(primitive.NilObjectID, apperr.New(apperr.KindDuplicateKey, "Duplicate field value: \"jonas@example.com\". Please use another value!")).Once()
			},
			wantKind: apperr.KindDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			_, _, err := f.svc.Signup(context.Background(), tt.input)

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			f.maker.AssertNotCalled(t, "GenerateToken", mock.Anything)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name      string
		email     string
		password  string
		setup     func(f *fixture, t *testing.T)
		wantToken string
		wantKind  apperr.Kind
		wantMsg   string
	}{
		{
			name:     "success",
			email:    "Jonas@example.com",
			password: "pass1234",
			setup: func(f *fixture, t *testing.T) {
				f.users.On("FindActiveByEmail", mock.Anything, "jonas@example.com").
					Return(&models.User{ID: id, Password: f.hash(t, "pass1234")}, nil).Once()
				f.maker.On("GenerateToken", id.Hex()).Return("signed-token", nil).Once()
			},
			wantToken: "signed-token",
		},
		{
			name:     "missing password",
			email:    "jonas@example.com",
			setup:    func(_ *fixture, _ *testing.T) {},
			wantKind: apperr.KindBadRequest,
			wantMsg:  services.MsgMissingCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "pass1234",
			setup: func(f *fixture, _ *testing.T) {
				f.users.On("FindActiveByEmail", mock.Anything, "nobody@example.com").Return(nil, mongodb.ErrNotFound).Once()
			},
			wantKind: apperr.KindIncorrectCredentials,
			wantMsg:  services.MsgIncorrectCredentials,
		},
		{
			name:     "wrong password",
			email:    "jonas@example.com",
			password: "wrong-pass",
			setup: func(f *fixture, t *testing.T) {
				f.users.On("FindActiveByEmail", mock.Anything, "jonas@example.com").
					Return(&models.User{ID: id, Password: f.hash(t, "pass1234")}, nil).Once()
			},
			wantKind: apperr.KindIncorrectCredentials,
			wantMsg:  services.MsgIncorrectCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f, t)

			_, token, err := f.svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantToken != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				return
			}
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, tt.wantMsg, e.Message)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	id := primitive.NewObjectID()
	iat := now.Add(-time.Hour)
	changedBefore := iat.Add(-time.Minute)
	changedAfter := iat.Add(time.Minute)

	tests := []struct {
		name     string
		token    string
		setup    func(f *fixture)
		wantKind apperr.Kind
		wantOK   bool
	}{
		{
			name:     "no token",
			token:    "",
			setup:    func(_ *fixture) {},
			wantKind: apperr.KindNotAuthenticated,
		},
		{
			name:  "invalid signature",
			token: "tampered",
			setup: func(f *fixture) {
				f.maker.On("ParseToken", "tampered").Return(nil, customjwt.ErrInvalidToken).Once()
			},
			wantKind: apperr.KindInvalidToken,
		},
		{
			name:  "expired",
			token: "old",
			setup: func(f *fixture) {
				f.maker.On("ParseToken", "old").Return(nil, customjwt.ErrExpiredToken).Once()
			},
			wantKind: apperr.KindExpiredToken,
		},
		{
			name:  "principal gone",
			token: "valid",
			setup: func(f *fixture) {
				f.maker.On("ParseToken", "valid").Return(claimsAt(id.Hex(), iat), nil).Once()
				f.users.On("FindActiveByID", mock.Anything, id).Return(nil, mongodb.ErrNotFound).Once()
			},
			wantKind: apperr.KindPrincipalNotFound,
		},
		{
			name:  "password changed after token was issued",
			token: "valid",
			setup: func(f *fixture) {
				f.maker.On("ParseToken", "valid").Return(claimsAt(id.Hex(), iat), nil).Once()
				f.users.On("FindActiveByID", mock.Anything, id).
					Return(&models.User{ID: id, PasswordChangedAt: &changedAfter}, nil).Once()
			},
			wantKind: apperr.KindStaleToken,
		},
		{
			name:  "password changed before token was issued",
			token: "valid",
			setup: func(f *fixture) {
				f.maker.On("ParseToken", "valid").Return(claimsAt(id.Hex(), iat), nil).Once()
				f.users.On("FindActiveByID", mock.Anything, id).
					Return(&models.User{ID: id, PasswordChangedAt: &changedBefore}, nil).Once()
			},
			wantOK: true,
		},
		{
			name:  "malformed principal id",
			token: "valid",
			setup: func(f *fixture) {
				f.maker.On("ParseToken", "valid").Return(claimsAt("42", iat), nil).Once()
			},
			wantKind: apperr.KindInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			user, err := f.svc.Authenticate(context.Background(), tt.token)

			if tt.wantOK {
				require.NoError(t, err)
				assert.Equal(t, id, user.ID)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, 401, apperr.KindOf(err).Status())
		})
	}
}

func TestAuthorize(t *testing.T) {
	admin := &models.User{Role: models.RoleAdmin}
	guide := &models.User{Role: models.RoleGuide}

	assert.NoError(t, services.Authorize(admin, models.RoleAdmin, models.RoleLeadGuide))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(services.Authorize(guide, models.RoleAdmin, models.RoleLeadGuide)))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(services.Authorize(nil, models.RoleAdmin)))
}

func TestAuthService_ForgotPassword(t *testing.T) {
	id := primitive.NewObjectID()
	user := &models.User{ID: id, Name: "Jonas", Email: "jonas@example.com"}
	resetURL := func(token string) string { return "http://localhost/api/v1/users/resetPassword/" + token }

	t.Run("sent", func(t *testing.T) {
		f := newFixture()
		var storedHash string
		f.users.On("FindActiveByEmail", mock.Anything, "jonas@example.com").Return(user, nil).Once()
		f.users.On("SetResetToken", mock.Anything, id, mock.AnythingOfType("string"), now.Add(password.ResetTokenTTL)).
			Run(func(args mock.Arguments) { storedHash = args.String(2) }).
			Return(nil).Once()
		f.mailer.On("SendPasswordReset", mock.Anything, "jonas@example.com", "Jonas", mock.MatchedBy(func(url string) bool {
			plain := url[len("http://localhost/api/v1/users/resetPassword/"):]
			return len(plain) == 64 && password.HashResetToken(plain) == storedHash
		})).Return(nil).Once()

		require.NoError(t, f.svc.ForgotPassword(context.Background(), "jonas@example.com", resetURL))
		f.users.AssertExpectations(t)
		f.mailer.AssertExpectations(t)
		f.users.AssertNotCalled(t, "ClearResetToken", mock.Anything, mock.Anything)
	})

	t.Run("mail failure rolls back the token", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindActiveByEmail", mock.Anything, "jonas@example.com").Return(user, nil).Once()
		f.users.On("SetResetToken", mock.Anything, id, mock.Anything, mock.Anything).Return(nil).Once()
		f.mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
		f.users.On("ClearResetToken", mock.Anything, id).Return(nil).Once()

		err := f.svc.ForgotPassword(context.Background(), "jonas@example.com", resetURL)

		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindDeliveryFailed, e.Kind)
		assert.Equal(t, 500, e.Kind.Status())
		assert.Equal(t, services.MsgEmailFailed, e.Message)
		f.users.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindActiveByEmail", mock.Anything, "nobody@example.com").Return(nil, mongodb.ErrNotFound).Once()

		err := f.svc.ForgotPassword(context.Background(), "nobody@example.com", resetURL)

		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestAuthService_ResetPassword_SingleUse(t *testing.T) {
	f := newFixture()
	id := primitive.NewObjectID()
	plain := "a1b2c3"
	hash := password.HashResetToken(plain)

	f.users.On("ConsumeResetToken", mock.Anything, hash, now, mock.AnythingOfType("string"), now.Add(-time.Second)).
		Return(&models.User{ID: id}, nil).Once()
	f.users.On("ConsumeResetToken", mock.Anything, hash, now, mock.AnythingOfType("string"), now.Add(-time.Second)).
		Return(nil, mongodb.ErrNotFound).Once()
	f.maker.On("GenerateToken", id.Hex()).Return("signed-token", nil).Once()

	_, token, err := f.svc.ResetPassword(context.Background(), plain, "newpass123")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)

	_, _, err = f.svc.ResetPassword(context.Background(), plain, "newpass123")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalidOrExpiredToken, e.Kind)
	assert.Equal(t, 400, e.Kind.Status())
	assert.Equal(t, services.MsgResetTokenInvalid, e.Message)
}

func TestAuthService_ResetPassword_TooLong(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.ResetPassword(context.Background(), "a1b2c3", strings.Repeat("a", 73))

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, 400, e.Kind.Status())
	assert.Contains(t, e.Message, models.MsgPasswordTooLong)
	f.users.AssertNotCalled(t, "ConsumeResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("success", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindActiveByID", mock.Anything, id).Return(&models.User{ID: id, Password: f.hash(t, "pass1234")}, nil).Once()
		f.users.On("UpdatePassword", mock.Anything, id, mock.MatchedBy(func(h string) bool {
			return f.hasher.Compare(h, "newpass123") == nil
		}), now.Add(-time.Second)).Return(&models.User{ID: id}, nil).Once()
		f.maker.On("GenerateToken", id.Hex()).Return("signed-token", nil).Once()

		_, token, err := f.svc.UpdatePassword(context.Background(), id, "pass1234", "newpass123")

		require.NoError(t, err)
		assert.Equal(t, "signed-token", token)
		f.users.AssertExpectations(t)
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindActiveByID", mock.Anything, id).Return(&models.User{ID: id, Password: f.hash(t, "pass1234")}, nil).Once()

		_, _, err := f.svc.UpdatePassword(context.Background(), id, "guess", "newpass123")

		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindIncorrectCredentials, e.Kind)
		assert.Equal(t, services.MsgWrongPassword, e.Message)
		f.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
