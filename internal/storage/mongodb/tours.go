package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// PublicTours — фильтр по умолчанию для туров: секретные туры не видны.
var PublicTours = bson.D{{Key: "secretTour", Value: bson.D{{Key: "$ne", Value: true}}}}

// TourStat — статистика туров одной сложности.
type TourStat struct {
	Difficulty string  `bson:"_id" json:"_id"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	AvgRatings float64 `bson:"avgRatings" json:"avgRatings"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

// MonthPlan — число стартов туров в одном месяце года.
type MonthPlan struct {
	Month         int      `bson:"month" json:"-"`
	MonthName     string   `bson:"-" json:"month"`
	NumTourStarts int      `bson:"numTourStarts" json:"numTourStarts"`
	Tours         []string `bson:"tours" json:"tours"`
}

// TourDistance — расстояние от точки до старта тура.
type TourDistance struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Distance float64            `bson:"distance" json:"distance"`
}

// TourStore хранит туры.
type TourStore struct {
	*Collection[models.Tour]
}

// NewTourStore создаёт хранилище туров.
func NewTourStore(db *mongo.Database) *TourStore {
	return &TourStore{Collection: NewCollection[models.Tour](db, ToursCollection)}
}

// TourStatsPipeline группирует туры с рейтингом от 4.5 по сложности.
func TourStatsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "ratingsAverage", Value: bson.D{{Key: "$gte", Value: 4.5}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$toUpper", Value: "$difficulty"}}},
			{Key: "numTours", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "numRatings", Value: bson.D{{Key: "$sum", Value: "$ratingsQuantity"}}},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "avgRatings", Value: bson.D{{Key: "$avg", Value: "$ratingsAverage"}}},
			{Key: "minPrice", Value: bson.D{{Key: "$min", Value: "$price"}}},
			{Key: "maxPrice", Value: bson.D{{Key: "$max", Value: "$price"}}},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "avgPrice", Value: bson.D{{Key: "$round", Value: bson.A{"$avgPrice", 2}}}},
			{Key: "avgRatings", Value: bson.D{{Key: "$round", Value: bson.A{"$avgRatings", 2}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgPrice", Value: 1}}}},
	}
}

// MonthlyPlanPipeline считает старты туров по месяцам года [from, to).
func MonthlyPlanPipeline(from, to time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.D{{Key: "startDates", Value: bson.D{
			{Key: "$gte", Value: from},
			{Key: "$lt", Value: to},
		}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$month", Value: "$startDates"}}},
			{Key: "numTourStarts", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "tours", Value: bson.D{{Key: "$push", Value: "$name"}}},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "month", Value: "$_id"}}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}}}},
		{{Key: "$sort", Value: bson.D{{Key: "numTourStarts", Value: -1}}}},
		{{Key: "$limit", Value: 12}},
	}
}

// WithinFilter выбирает туры, старт которых лежит в круге радиуса radius (в радианах).
func WithinFilter(lng, lat, radius float64) bson.D {
	return bson.D{{Key: "startLocation", Value: bson.D{{Key: "$geoWithin", Value: bson.D{
		{Key: "$centerSphere", Value: bson.A{bson.A{lng, lat}, radius}},
	}}}}}
}

// DistancesPipeline считает расстояние от точки до старта каждого публичного тура.
// $geoNear должен быть первой стадией, поэтому фильтр секретных туров передаётся в query.
func DistancesPipeline(lng, lat, multiplier float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: bson.A{lng, lat}},
			}},
			{Key: "distanceField", Value: "distance"},
			{Key: "distanceMultiplier", Value: multiplier},
			{Key: "query", Value: PublicTours},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "distance", Value: 1},
			{Key: "name", Value: 1},
		}}},
	}
}

// Stats возвращает статистику туров по сложности.
func (s *TourStore) Stats(ctx context.Context) ([]TourStat, error) {
	const op = "storage.mongodb.TourStats"

	stats := make([]TourStat, 0)
	if err := s.Aggregate(ctx, TourStatsPipeline(), &stats); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// MonthlyPlan возвращает план стартов туров по месяцам [from, to).
func (s *TourStore) MonthlyPlan(ctx context.Context, from, to time.Time) ([]MonthPlan, error) {
	const op = "storage.mongodb.MonthlyPlan"

	plan := make([]MonthPlan, 0)
	if err := s.Aggregate(ctx, MonthlyPlanPipeline(from, to), &plan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// Within возвращает публичные туры в радиусе radius радиан от точки.
func (s *TourStore) Within(ctx context.Context, lng, lat, radius float64) ([]models.Tour, error) {
	const op = "storage.mongodb.ToursWithin"

	filter := bson.D{{Key: "$and", Value: bson.A{PublicTours, WithinFilter(lng, lat, radius)}}}
	tours, err := s.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tours, nil
}

// Distances возвращает расстояния до публичных туров, умноженные на multiplier.
func (s *TourStore) Distances(ctx context.Context, lng, lat, multiplier float64) ([]TourDistance, error) {
	const op = "storage.mongodb.Distances"

	out := make([]TourDistance, 0)
	if err := s.Aggregate(ctx, DistancesPipeline(lng, lat, multiplier), &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// UpdateRatings сохраняет пересчитанные количество и средний рейтинг тура.
func (s *TourStore) UpdateRatings(ctx context.Context, tourID primitive.ObjectID, quantity int, average float64) error {
	const op = "storage.mongodb.UpdateRatings"

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "ratingsQuantity", Value: quantity},
		{Key: "ratingsAverage", Value: average},
	}}}
	if _, err := s.UpdateFields(ctx, bson.D{{Key: "_id", Value: tourID}}, update); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
