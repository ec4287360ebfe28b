// Package user содержит операции пользователя над собственным профилем.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

// MsgPasswordRoute возвращается, если в updateMe пришёл пароль.
const MsgPasswordRoute = "This route is not for password updates. Please use /updateMyPassword."

// UserRepository описывает операции над профилем в базе данных.
type UserRepository interface {
	FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.D) (*models.User, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

// UpdateMeInput — тело запроса updateMe. Поля пароля принимаются только
// для того, чтобы отклонить запрос.
type UpdateMeInput struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"passwordConfirm"`
}

// UserService реализует updateMe, deleteMe и me.
type UserService struct {
	users UserRepository
	log   *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users UserRepository, log *slog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// Me возвращает профиль вошедшего пользователя.
func (s *UserService) Me(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	const op = "user.Me"

	u, err := s.users.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFound("user"))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateMe меняет имя и email. Остальные поля тела игнорируются.
func (s *UserService) UpdateMe(ctx context.Context, id primitive.ObjectID, in UpdateMeInput) (*models.User, error) {
	const op = "user.UpdateMe"

	if in.Password != "" || in.PasswordConfirm != "" {
		return nil, fmt.Errorf("%s: %w", op, apperr.New(apperr.KindBadRequest, MsgPasswordRoute))
	}

	current, err := s.Me(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	candidate := *current
	if in.Name != nil {
		candidate.Name = *in.Name
	}
	if in.Email != nil {
		candidate.Email = *in.Email
	}
	candidate.BeforeWrite(models.OpUpdate, time.Time{})
	if errs := candidate.Validate(models.OpUpdate); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.Validation(errs))
	}
	fields := bson.D{}
	if in.Name != nil {
		fields = append(fields, bson.E{Key: "name", Value: candidate.Name})
	}
	if in.Email != nil {
		fields = append(fields, bson.E{Key: "email", Value: candidate.Email})
	}
	if len(fields) == 0 {
		return current, nil
	}

	updated, err := s.users.UpdateProfile(ctx, id, fields)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFound("user"))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("profile updated", slog.String("op", op), slog.String("user", id.Hex()))
	return updated, nil
}

// DeleteMe деактивирует пользователя. Документ остаётся в базе.
func (s *UserService) DeleteMe(ctx context.Context, id primitive.ObjectID) error {
	const op = "user.DeleteMe"

	if err := s.users.Deactivate(ctx, id); err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, apperr.NotFound("user"))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user deactivated", slog.String("op", op), slog.String("user", id.Hex()))
	return nil
}

// Protect не даёт администратору изменить через PATCH пароль, поля сброса и активность.
func Protect(old, merged *models.User) {
	merged.ID = old.ID
	merged.Password = old.Password
	merged.PasswordChangedAt = old.PasswordChangedAt
	merged.PasswordResetToken = old.PasswordResetToken
	merged.PasswordResetExpires = old.PasswordResetExpires
	merged.Active = old.Active
}
