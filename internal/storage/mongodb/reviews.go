package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// RatingStats — агрегат рейтинга тура по его отзывам.
type RatingStats struct {
	Quantity int     `bson:"nRating"`
	Average  float64 `bson:"avgRating"`
}

// ReviewStore хранит отзывы.
type ReviewStore struct {
	*Collection[models.Review]
}

// NewReviewStore создаёт хранилище отзывов.
func NewReviewStore(db *mongo.Database) *ReviewStore {
	return &ReviewStore{Collection: NewCollection[models.Review](db, ReviewsCollection)}
}

// RatingStatsPipeline считает число отзывов и средний рейтинг тура.
func RatingStatsPipeline(tourID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "tour", Value: tourID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tour"},
			{Key: "nRating", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
		}}},
	}
}

// RatingStats возвращает агрегат рейтинга тура; ok=false, если отзывов нет.
func (s *ReviewStore) RatingStats(ctx context.Context, tourID primitive.ObjectID) (RatingStats, bool, error) {
	const op = "storage.mongodb.RatingStats"

	var stats []RatingStats
	if err := s.Aggregate(ctx, RatingStatsPipeline(tourID), &stats); err != nil {
		return RatingStats{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if len(stats) == 0 {
		return RatingStats{}, false, nil
	}
	return stats[0], true, nil
}

// FindByTour возвращает отзывы тура, новые первыми.
func (s *ReviewStore) FindByTour(ctx context.Context, tourID primitive.ObjectID) ([]models.Review, error) {
	const op = "storage.mongodb.FindByTour"

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.D{{Key: "__v", Value: 0}})
	reviews, err := s.Find(ctx, bson.D{{Key: "tour", Value: tourID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}
