// Package tour содержит бизнес-логику туров: загрузку гидов и отзывов,
// отчёты по турам и геопоиск.
package tour

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/lib/month"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

// Радиус Земли для перевода расстояния в радианы.
const (
	EarthRadiusMi = 3963.2
	EarthRadiusKm = 6378.1
)

// Множители перевода метров из $geoNear.
const (
	MetersToMiles = 0.000621371
	MetersToKm    = 0.001
)

// GuideProjection скрывает служебные поля гидов при populate.
var GuideProjection = bson.D{
	{Key: "__v", Value: 0},
	{Key: "passwordChangedAt", Value: 0},
	{Key: "password", Value: 0},
	{Key: "passwordResetToken", Value: 0},
	{Key: "passwordResetExpires", Value: 0},
}

// AuthorProjection — поля автора отзыва при populate.
var AuthorProjection = bson.D{
	{Key: "name", Value: 1},
	{Key: "photo", Value: 1},
}

// TourRepository описывает отчёты и геозапросы по турам.
type TourRepository interface {
	Stats(ctx context.Context) ([]mongodb.TourStat, error)
	MonthlyPlan(ctx context.Context, from, to time.Time) ([]mongodb.MonthPlan, error)
	Within(ctx context.Context, lng, lat, radius float64) ([]models.Tour, error)
	Distances(ctx context.Context, lng, lat, multiplier float64) ([]mongodb.TourDistance, error)
}

// UserRepository загружает пользователей для populate.
type UserRepository interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID, projection bson.D) (map[primitive.ObjectID]models.User, error)
}

// ReviewRepository загружает отзывы тура.
type ReviewRepository interface {
	FindByTour(ctx context.Context, tourID primitive.ObjectID) ([]models.Review, error)
}

// TourService реализует отчёты по турам и загрузку связанных документов.
type TourService struct {
	tours   TourRepository
	users   UserRepository
	reviews ReviewRepository
	log     *slog.Logger
}

// NewTourService создает новый экземпляр TourService.
func NewTourService(tours TourRepository, users UserRepository, reviews ReviewRepository, log *slog.Logger) *TourService {
	return &TourService{
		tours:   tours,
		users:   users,
		reviews: reviews,
		log:     log,
	}
}

// PopulateGuides подставляет профили гидов в туры.
func (s *TourService) PopulateGuides(ctx context.Context, tours []*models.Tour) error {
	const op = "tour.PopulateGuides"

	var ids []primitive.ObjectID
	for _, t := range tours {
		ids = append(ids, t.Guides...)
	}
	if len(ids) == 0 {
		return nil
	}
	users, err := s.users.FindByIDs(ctx, ids, GuideProjection)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, t := range tours {
		if len(t.Guides) == 0 {
			continue
		}
		t.GuideProfiles = make([]models.User, 0, len(t.Guides))
		for _, id := range t.Guides {
			if u, ok := users[id]; ok {
				t.GuideProfiles = append(t.GuideProfiles, u)
			}
		}
	}
	return nil
}

// PopulateReviews загружает отзывы тура вместе с их авторами.
func (s *TourService) PopulateReviews(ctx context.Context, tour *models.Tour) error {
	const op = "tour.PopulateReviews"

	reviews, err := s.reviews.FindByTour(ctx, tour.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	ptrs := make([]*models.Review, len(reviews))
	for i := range reviews {
		ptrs[i] = &reviews[i]
	}
	if err := PopulateAuthors(ctx, s.users, ptrs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tour.Reviews = reviews
	return nil
}

// PopulateAuthors подставляет публичные профили авторов в отзывы.
func PopulateAuthors(ctx context.Context, users UserRepository, reviews []*models.Review) error {
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.User)
	}
	if len(ids) == 0 {
		return nil
	}
	found, err := users.FindByIDs(ctx, ids, AuthorProjection)
	if err != nil {
		return err
	}
	for _, r := range reviews {
		if u, ok := found[r.User]; ok {
			r.Author = &u
		}
	}
	return nil
}

// Stats возвращает статистику туров с рейтингом от 4.5, сгруппированную по сложности.
func (s *TourService) Stats(ctx context.Context) ([]mongodb.TourStat, error) {
	const op = "tour.Stats"

	stats, err := s.tours.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// MonthlyPlan возвращает число стартов туров по месяцам года rawYear.
func (s *TourService) MonthlyPlan(ctx context.Context, rawYear string) ([]mongodb.MonthPlan, error) {
	const op = "tour.MonthlyPlan"

	year, err := strconv.Atoi(rawYear)
	if err != nil || !month.ValidYear(year) {
		return nil, fmt.Errorf("%s: %w", op, apperr.Newf(apperr.KindBadRequest, "Invalid year: %s.", rawYear))
	}
	from, to := month.YearBounds(year)
	plan, err := s.tours.MonthlyPlan(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range plan {
		plan[i].MonthName = month.Name(plan[i].Month)
	}
	return plan, nil
}

// Within возвращает публичные туры, старт которых не дальше distance от центра latlng.
func (s *TourService) Within(ctx context.Context, rawDistance, latlng, unit string) ([]models.Tour, error) {
	const op = "tour.Within"

	lat, lng, err := ParseLatLng(latlng)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	distance, err := strconv.ParseFloat(rawDistance, 64)
	if err != nil || !finite(distance) || distance <= 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.Newf(apperr.KindBadRequest, "Invalid distance: %s.", rawDistance))
	}

	tours, err := s.tours.Within(ctx, lng, lat, Radians(distance, unit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ptrs := make([]*models.Tour, len(tours))
	for i := range tours {
		ptrs[i] = &tours[i]
	}
	if err := s.PopulateGuides(ctx, ptrs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tours, nil
}

// Distances возвращает расстояние от точки latlng до старта каждого публичного тура.
func (s *TourService) Distances(ctx context.Context, latlng, unit string) ([]mongodb.TourDistance, error) {
	const op = "tour.Distances"

	lat, lng, err := ParseLatLng(latlng)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := s.tours.Distances(ctx, lng, lat, Multiplier(unit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ParseLatLng разбирает строку "lat,lng".
func ParseLatLng(raw string) (lat, lng float64, err error) {
	bad := apperr.New(apperr.KindBadRequest, "Please provide latitude and longitude in the format lat,lng.")

	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, bad
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || !finite(lat) || lat < -90 || lat > 90 {
		return 0, 0, bad
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || !finite(lng) || lng < -180 || lng > 180 {
		return 0, 0, bad
	}
	return lat, lng, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Radians переводит расстояние в мили ("mi") или километры в радианы.
func Radians(distance float64, unit string) float64 {
	if unit == "mi" {
		return distance / EarthRadiusMi
	}
	return distance / EarthRadiusKm
}

// Multiplier возвращает множитель перевода метров в мили ("mi") или километры.
func Multiplier(unit string) float64 {
	if unit == "mi" {
		return MetersToMiles
	}
	return MetersToKm
}

// AliasTopTours подставляет параметры выборки пяти лучших дешёвых туров.
func AliasTopTours(q url.Values) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = v
	}
	out.Set("limit", "5")
	out.Set("sort", "price,-ratingsAverage")
	out.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	return out
}
