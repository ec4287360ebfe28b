// Package mongodb реализует хранилище туров, пользователей и отзывов на MongoDB.
//
// Ошибки драйвера классифицируются на границе хранилища: отсутствие документа
// превращается в ErrNotFound, нарушение уникального индекса и некорректный
// идентификатор становятся операционными ошибками apperr.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Имена коллекций.
const (
	UsersCollection   = "users"
	ToursCollection   = "tours"
	ReviewsCollection = "reviews"
)

// Storage инкапсулирует подключение к MongoDB и выбранную базу данных.
type Storage struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// New подключается к MongoDB и проверяет соединение.
func New(ctx context.Context, uri, database string, timeout time.Duration) (*Storage, error) {
	const op = "storage.mongodb.New"

	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pingCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		Client: client,
		DB:     client.Database(database),
	}, nil
}

// Close закрывает соединение с MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	const op = "storage.mongodb.Close"
	if err := s.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Users возвращает хранилище пользователей.
func (s *Storage) Users() *UserStore {
	return NewUserStore(s.DB)
}

// Tours возвращает хранилище туров.
func (s *Storage) Tours() *TourStore {
	return NewTourStore(s.DB)
}

// Reviews возвращает хранилище отзывов.
func (s *Storage) Reviews() *ReviewStore {
	return NewReviewStore(s.DB)
}

// Ping проверяет, что primary доступен.
func (s *Storage) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, readpref.Primary())
}
