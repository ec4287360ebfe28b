package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
)

// Сложность тура.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

const (
	// DefaultRating — рейтинг тура без отзывов.
	DefaultRating = 1.0
	// RatingDigits — число значащих цифр среднего рейтинга.
	RatingDigits = 3
)

// GeoPoint — точка GeoJSON. Координаты хранятся в порядке [lng, lat].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

// Tour — тур с расписанием, геоданными и гидами.
type Tour struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name            string               `bson:"name,omitempty" json:"name,omitempty" validate:"required,min=10,max=40"`
	Slug            string               `bson:"slug,omitempty" json:"slug,omitempty"`
	Duration        int                  `bson:"duration,omitempty" json:"duration,omitempty" validate:"required,gt=0"`
	MaxGroupSize    int                  `bson:"maxGroupSize,omitempty" json:"maxGroupSize,omitempty" validate:"required,gt=0"`
	Difficulty      string               `bson:"difficulty,omitempty" json:"difficulty,omitempty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64              `bson:"ratingsAverage" json:"ratingsAverage,omitempty" validate:"min=1,max=5"`
	RatingsQuantity int                  `bson:"ratingsQuantity" json:"ratingsQuantity,omitempty"`
	Price           float64              `bson:"price,omitempty" json:"price,omitempty" validate:"required,gt=0"`
	PriceDiscount   float64              `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty" validate:"gte=0"`
	Summary         string               `bson:"summary,omitempty" json:"summary,omitempty" validate:"required"`
	Description     string               `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string               `bson:"imageCover,omitempty" json:"imageCover,omitempty" validate:"required"`
	Images          []string             `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt" json:"-"`
	StartDates      []time.Time          `bson:"startDates,omitempty" json:"startDates,omitempty"`
	SecretTour      bool                 `bson:"secretTour" json:"secretTour,omitempty"`
	StartLocation   *GeoPoint            `bson:"startLocation,omitempty" json:"startLocation,omitempty"`
	Locations       []GeoPoint           `bson:"locations,omitempty" json:"locations,omitempty"`
	Guides          []primitive.ObjectID `bson:"guides,omitempty" json:"guides,omitempty"`
	Version         int                  `bson:"__v" json:"__v,omitempty"`

	// Заполняются при populate и не хранятся.
	GuideProfiles []User   `bson:"-" json:"-" validate:"-"`
	Reviews       []Review `bson:"-" json:"-" validate:"-"`
}

var tourMessages = map[string]string{
	"name.required":         "A tour must have a name",
	"name.max":              "A tour name must have less or equal then 40 characters",
	"name.min":              "A tour name must have more or equal then 10 characters",
	"duration.required":     "A tour must have a duration",
	"maxGroupSize.required": "A tour must have a group size",
	"difficulty.required":   "A tour must have a difficulty",
	"difficulty.oneof":      "Difficulty is either: easy, medium, difficult",
	"ratingsAverage.min":    "Rating must be above 1.0",
	"ratingsAverage.max":    "Rating must be below 5.0",
	"price.required":        "A tour must have a price",
	"summary.required":      "A tour must have a description",
	"imageCover.required":   "A tour must have a cover image",
}

func (t *Tour) GetID() primitive.ObjectID { return t.ID }

func (t *Tour) SetID(id primitive.ObjectID) { t.ID = id }

// BeforeWrite пересчитывает slug, округляет рейтинг и выставляет значения по умолчанию.
func (t *Tour) BeforeWrite(op Op, now time.Time) {
	t.Name = strings.TrimSpace(t.Name)
	t.Summary = strings.TrimSpace(t.Summary)
	t.Description = strings.TrimSpace(t.Description)
	t.Slug = Slugify(t.Name)

	if op == OpCreate {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.RatingsAverage == 0 {
			t.RatingsAverage = DefaultRating
		}
	}
	t.RatingsAverage = RoundSignificant(t.RatingsAverage, RatingDigits)

	if t.StartLocation != nil {
		t.StartLocation.Type = "Point"
	}
	for i := range t.Locations {
		t.Locations[i].Type = "Point"
	}
}

// Validate проверяет поля тура. Скидка сравнивается с ценой того же документа,
// поэтому при обновлении проверяется результат слияния с патчем.
func (t *Tour) Validate(_ Op) []apperr.FieldError {
	errs := checkStruct(t, tourMessages)
	if t.PriceDiscount > 0 && t.PriceDiscount >= t.Price {
		errs = append(errs, apperr.FieldError{
			Field:   "priceDiscount",
			Message: fmt.Sprintf("Discount price (%v) should be below regular price", t.PriceDiscount),
		})
	}
	if t.StartLocation != nil && len(t.StartLocation.Coordinates) != 2 {
		errs = append(errs, apperr.FieldError{
			Field:   "startLocation",
			Message: "Start location must have coordinates [lng, lat]",
		})
	}
	for _, loc := range t.Locations {
		if len(loc.Coordinates) != 2 {
			errs = append(errs, apperr.FieldError{
				Field:   "locations",
				Message: "Every location must have coordinates [lng, lat]",
			})
			break
		}
	}
	return errs
}

// DurationWeeks — длительность тура в неделях.
func (t *Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}

// MarshalJSON добавляет вычисляемые поля и подставляет профили гидов и отзывы, если они загружены.
func (t Tour) MarshalJSON() ([]byte, error) {
	type alias Tour
	out := struct {
		alias
		ID            string   `json:"id"`
		DurationWeeks float64  `json:"durationWeeks,omitempty"`
		Guides        any      `json:"guides,omitempty"`
		Reviews       []Review `json:"reviews,omitempty"`
	}{
		alias:         alias(t),
		ID:            t.ID.Hex(),
		DurationWeeks: t.DurationWeeks(),
		Reviews:       t.Reviews,
	}
	switch {
	case t.GuideProfiles != nil:
		out.Guides = t.GuideProfiles
	case len(t.Guides) > 0:
		out.Guides = t.Guides
	}
	return json.Marshal(out)
}
