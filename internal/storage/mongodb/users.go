package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// ActiveUsers — фильтр по умолчанию для пользователей: деактивированные не видны.
var ActiveUsers = bson.D{{Key: "active", Value: bson.D{{Key: "$ne", Value: false}}}}

// UserStore хранит пользователей.
type UserStore struct {
	*Collection[models.User]
}

// NewUserStore создаёт хранилище пользователей.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{Collection: NewCollection[models.User](db, UsersCollection)}
}

// active дополняет условия фильтром активных пользователей.
func active(cond ...bson.E) bson.D {
	filter := make(bson.D, 0, len(cond)+len(ActiveUsers))
	filter = append(filter, cond...)
	return append(filter, ActiveUsers...)
}

// FindActiveByEmail ищет активного пользователя по email.
func (s *UserStore) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongodb.FindActiveByEmail"

	u, err := s.FindOne(ctx, active(bson.E{Key: "email", Value: email}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindActiveByID ищет активного пользователя по идентификатору.
func (s *UserStore) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	const op = "storage.mongodb.FindActiveByID"

	u, err := s.FindOne(ctx, active(bson.E{Key: "_id", Value: id}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindByIDs загружает активных пользователей по списку идентификаторов с проекцией projection.
func (s *UserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID, projection bson.D) (map[primitive.ObjectID]models.User, error) {
	const op = "storage.mongodb.FindByIDs"

	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	filter := active(bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}})
	users, err := s.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// SetResetToken сохраняет отпечаток токена сброса вместе со сроком его действия.
func (s *UserStore) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	const op = "storage.mongodb.SetResetToken"

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "passwordResetToken", Value: tokenHash},
		{Key: "passwordResetExpires", Value: expires},
	}}}
	if _, err := s.UpdateFields(ctx, bson.D{{Key: "_id", Value: id}}, update); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearResetToken удаляет токен сброса и срок его действия одной операцией.
func (s *UserStore) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	const op = "storage.mongodb.ClearResetToken"

	if _, err := s.UpdateFields(ctx, bson.D{{Key: "_id", Value: id}}, unsetReset()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConsumeResetToken атомарно находит пользователя по действующему токену сброса,
// устанавливает новый пароль и гасит токен. Повторный вызов с тем же токеном вернёт ErrNotFound.
func (s *UserStore) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string, changedAt time.Time) (*models.User, error) {
	const op = "storage.mongodb.ConsumeResetToken"

	filter := active(
		bson.E{Key: "passwordResetToken", Value: tokenHash},
		bson.E{Key: "passwordResetExpires", Value: bson.D{{Key: "$gt", Value: now}}},
	)
	u, err := s.UpdateFields(ctx, filter, passwordUpdate(passwordHash, changedAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdatePassword меняет хеш пароля, отмечает время смены и гасит токен сброса.
func (s *UserStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string, changedAt time.Time) (*models.User, error) {
	const op = "storage.mongodb.UpdatePassword"

	u, err := s.UpdateFields(ctx, active(bson.E{Key: "_id", Value: id}), passwordUpdate(passwordHash, changedAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateProfile меняет имя и email активного пользователя.
func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.D) (*models.User, error) {
	const op = "storage.mongodb.UpdateProfile"

	update := bson.D{
		{Key: "$set", Value: fields},
		{Key: "$inc", Value: bson.D{{Key: "__v", Value: 1}}},
	}
	u, err := s.UpdateFields(ctx, active(bson.E{Key: "_id", Value: id}), update)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Deactivate помечает пользователя неактивным.
func (s *UserStore) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	const op = "storage.mongodb.Deactivate"

	update := bson.D{{Key: "$set", Value: bson.D{{Key: "active", Value: false}}}}
	if _, err := s.UpdateFields(ctx, active(bson.E{Key: "_id", Value: id}), update); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PurgeExpiredResetTokens удаляет просроченные токены сброса и возвращает число затронутых пользователей.
func (s *UserStore) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.mongodb.PurgeExpiredResetTokens"

	filter := bson.D{{Key: "passwordResetExpires", Value: bson.D{{Key: "$lte", Value: now}}}}
	res, err := s.coll.UpdateMany(ctx, filter, unsetReset())
	if err != nil {
		return 0, classify(op, err)
	}
	return res.ModifiedCount, nil
}

func unsetReset() bson.D {
	return bson.D{{Key: "$unset", Value: bson.D{
		{Key: "passwordResetToken", Value: ""},
		{Key: "passwordResetExpires", Value: ""},
	}}}
}

func passwordUpdate(passwordHash string, changedAt time.Time) bson.D {
	return bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "password", Value: passwordHash},
			{Key: "passwordChangedAt", Value: changedAt},
		}},
		{Key: "$unset", Value: bson.D{
			{Key: "passwordResetToken", Value: ""},
			{Key: "passwordResetExpires", Value: ""},
		}},
		{Key: "$inc", Value: bson.D{{Key: "__v", Value: 1}}},
	}
}
