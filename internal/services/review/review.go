// Package review содержит бизнес-логику отзывов: пересчёт рейтинга тура
// после каждой записи и загрузку авторов.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/cache"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/services/tour"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

// ReviewRepository считает агрегат рейтинга по отзывам тура.
type ReviewRepository interface {
	RatingStats(ctx context.Context, tourID primitive.ObjectID) (mongodb.RatingStats, bool, error)
}

// TourRepository сохраняет рейтинг тура.
type TourRepository interface {
	UpdateRatings(ctx context.Context, tourID primitive.ObjectID, quantity int, average float64) error
}

// UserRepository загружает авторов отзывов.
type UserRepository interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID, projection bson.D) (map[primitive.ObjectID]models.User, error)
}

// Cache сбрасывает закешированный тур после пересчёта рейтинга.
type Cache interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// ReviewService реализует хуки ресурса отзывов.
type ReviewService struct {
	reviews ReviewRepository
	tours   TourRepository
	users   UserRepository
	cache   Cache
	log     *slog.Logger
}

// NewReviewService создает новый экземпляр ReviewService. cache может быть nil.
func NewReviewService(reviews ReviewRepository, tours TourRepository, users UserRepository, cache Cache, log *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		tours:   tours,
		users:   users,
		cache:   cache,
		log:     log,
	}
}

// Recalculate пересчитывает количество отзывов и средний рейтинг тура.
// Тур без отзывов получает 0 отзывов и рейтинг по умолчанию.
func (s *ReviewService) Recalculate(ctx context.Context, tourID primitive.ObjectID) error {
	const op = "review.Recalculate"

	stats, ok, err := s.reviews.RatingStats(ctx, tourID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	quantity, average := 0, models.DefaultRating
	if ok {
		quantity = stats.Quantity
		average = models.RoundSignificant(stats.Average, models.RatingDigits)
	}

	err = s.tours.UpdateRatings(ctx, tourID, quantity, average)
	switch {
	case errors.Is(err, mongodb.ErrNotFound):
		s.log.Warn("tour of review not found", slog.String("op", op), slog.String("tour", tourID.Hex()))
		return nil
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cache.Key(mongodb.ToursCollection, tourID.Hex())); err != nil {
			s.log.Warn("failed to remove tour from cache", slog.String("op", op), sl.Err(err))
		}
	}
	s.log.Debug("tour ratings recalculated", slog.String("op", op),
		slog.String("tour", tourID.Hex()), slog.Int("quantity", quantity), slog.Float64("average", average))
	return nil
}

// PostWrite пересчитывает рейтинг тура, которому принадлежит отзыв.
func (s *ReviewService) PostWrite(ctx context.Context, r *models.Review) error {
	return s.Recalculate(ctx, r.Tour)
}

// Populate подставляет авторов отзывов.
func (s *ReviewService) Populate(ctx context.Context, reviews []*models.Review) error {
	const op = "review.Populate"

	if err := tour.PopulateAuthors(ctx, s.users, reviews); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Protect запрещает переносить отзыв в другой тур или менять его автора.
func Protect(old, merged *models.Review) {
	merged.Tour = old.Tour
	merged.User = old.User
	merged.CreatedAt = old.CreatedAt
}
