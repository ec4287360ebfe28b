// Package auth содержит логику регистрации, входа, проверки сессионных токенов
// и восстановления пароля.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-booking/internal/lib/password"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/rabbitmq"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

// Сообщения операционных ошибок.
const (
	MsgNotAuthenticated     = "You are not logged in! Please log in to get access."
	MsgInvalidToken         = "Invalid token. Please log in again!"
	MsgExpiredToken         = "Your token has expired! Please log in again."
	MsgPrincipalNotFound    = "The user belonging to this token does no longer exist."
	MsgStaleToken           = "User recently changed password! Please log in again."
	MsgForbidden            = "You do not have permission to perform this action"
	MsgMissingCredentials   = "Please provide email and password!"
	MsgIncorrectCredentials = "Incorrect email or password"
	MsgWrongPassword        = "Your current password is wrong."
	MsgNoUserWithEmail      = "There is no user with email address."
	MsgResetTokenInvalid    = "Token is invalid or has expired"
	MsgEmailFailed          = "There was an error sending the email. Try again later!"
)

// passwordChangeSkew сдвигает passwordChangedAt назад, чтобы токен,
// выпущенный в ту же секунду, не считался устаревшим.
const passwordChangeSkew = time.Second

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	FindActiveByEmail(ctx context.Context, email string) (*models.User, error)
	FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string, changedAt time.Time) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string, changedAt time.Time) (*models.User, error)
}

// Mailer отправляет письмо со ссылкой сброса пароля.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// Publisher публикует сообщения в очередь писем.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// SignupInput — данные регистрации.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	// WelcomeURL попадает в приветственное письмо.
	WelcomeURL string
}

// AuthService отвечает за регистрацию, авторизацию и жизненный цикл токенов.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	hasher    *password.Hasher
	mailer    Mailer
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// Option настраивает AuthService.
type Option func(*AuthService)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) {
		s.now = now
	}
}

// WithPublisher включает публикацию приветственных писем.
func WithPublisher(p Publisher) Option {
	return func(s *AuthService) {
		s.publisher = p
	}
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, hasher *password.Hasher, mailer Mailer, log *slog.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		hasher:   hasher,
		mailer:   mailer,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup создаёт пользователя с ролью user и выпускает для него токен.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	const op = "auth.Signup"

	user := &models.User{
		Name:  in.Name,
		Email: in.Email,
		Role:  models.RoleUser,
	}
	user.BeforeWrite(models.OpCreate, s.now())
	if fields := user.Validate(models.OpCreate); len(fields) > 0 {
		return nil, "", fmt.Errorf("%s: %w", op, apperr.Validation(fields))
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	user.Password = hash

	id, err := s.users.Insert(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id

	s.publishWelcome(ctx, user, in.WelcomeURL)

	token, err := s.jwtMaker.GenerateToken(id.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

func (s *AuthService) publishWelcome(ctx context.Context, user *models.User, url string) {
	const op = "auth.publishWelcome"
	if s.publisher == nil {
		return
	}
	msg := models.WelcomeEmail{Email: user.Email, Name: user.Name, URL: url}
	if err := s.publisher.Publish(ctx, rabbitmq.WelcomeRoutingKey, msg); err != nil {
		s.log.Error("failed to publish welcome email", slog.String("op", op), sl.Err(err))
	}
}

// Login проверяет email и пароль и выпускает токен.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Login"

	if email == "" || rawPassword == "" {
		return nil, "", fmt.Errorf("%s: %w", op, apperr.New(apperr.KindBadRequest, MsgMissingCredentials))
	}
	user, err := s.users.FindActiveByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, apperr.New(apperr.KindIncorrectCredentials, MsgIncorrectCredentials))
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkPassword(user.Password, rawPassword, MsgIncorrectCredentials); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// Authenticate проверяет токен и загружает активного пользователя, которому он выпущен.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.Authenticate"

	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.KindNotAuthenticated, MsgNotAuthenticated))
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.KindExpiredToken, MsgExpiredToken, err))
		}
		return nil, fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.KindInvalidToken, MsgInvalidToken, err))
	}

	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.KindInvalidToken, MsgInvalidToken, err))
	}
	user, err := s.users.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.KindPrincipalNotFound, MsgPrincipalNotFound))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.ChangedPasswordAfter(claims.IssuedAtUnix()) {
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.KindStaleToken, MsgStaleToken))
	}
	return user, nil
}

// Authorize проверяет, что роль пользователя входит в roles.
func Authorize(user *models.User, roles ...string) error {
	if user == nil || !user.HasRole(roles...) {
		return apperr.New(apperr.KindForbidden, MsgForbidden)
	}
	return nil
}

// ForgotPassword выпускает токен сброса и отправляет ссылку на почту.
// Если письмо не ушло, токен гасится.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, resetURL func(token string) string) error {
	const op = "auth.ForgotPassword"
	log := s.log.With(slog.String("op", op))

	user, err := s.users.FindActiveByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, apperr.New(apperr.KindNotFound, MsgNoUserWithEmail))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := password.NewResetToken(s.now())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, resetURL(token.Plain)); err != nil {
		log.Error("failed to send reset email", sl.Err(err))
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			log.Error("failed to clear reset token", sl.Err(clearErr))
		}
		return fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.KindDeliveryFailed, MsgEmailFailed, err))
	}

	log.Info("reset token sent", slog.String("user", user.ID.Hex()))
	return nil
}

// ResetPassword устанавливает новый пароль по токену сброса. Токен одноразовый.
func (s *AuthService) ResetPassword(ctx context.Context, plainToken, newPassword string) (*models.User, string, error) {
	const op = "auth.ResetPassword"

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()
	user, err := s.users.ConsumeResetToken(ctx, password.HashResetToken(plainToken), now, hash, now.Add(-passwordChangeSkew))
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, apperr.New(apperr.KindInvalidOrExpiredToken, MsgResetTokenInvalid))
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// UpdatePassword меняет пароль вошедшего пользователя после проверки текущего.
func (s *AuthService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, current, newPassword string) (*models.User, string, error) {
	const op = "auth.UpdatePassword"

	user, err := s.users.FindActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, apperr.New(apperr.KindPrincipalNotFound, MsgPrincipalNotFound))
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkPassword(user.Password, current, MsgWrongPassword); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	updated, err := s.users.UpdatePassword(ctx, user.ID, hash, s.now().Add(-passwordChangeSkew))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(updated.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return updated, token, nil
}

// hashPassword хеширует пароль; слишком длинный пароль — ошибка валидации.
func (s *AuthService) hashPassword(plain string) (string, error) {
	hash, err := s.hasher.Hash(plain)
	if errors.Is(err, password.ErrTooLong) {
		return "", apperr.Validation([]apperr.FieldError{{Field: "password", Message: models.MsgPasswordTooLong}})
	}
	return hash, err
}

func (s *AuthService) checkPassword(hash, plain, msg string) error {
	err := s.hasher.Compare(hash, plain)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, password.ErrMismatch):
		return apperr.New(apperr.KindIncorrectCredentials, msg)
	default:
		s.log.Error("failed to compare password hash", sl.Err(err))
		return apperr.Wrap(apperr.KindIncorrectCredentials, msg, err)
	}
}
