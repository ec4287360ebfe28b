package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
)

// Review — отзыв пользователя о туре. Пара (tour, user) уникальна.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Review    string             `bson:"review" json:"review" validate:"required"`
	Rating    float64            `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Version   int                `bson:"__v" json:"__v,omitempty"`

	// Author заполняется при populate.
	Author *User `bson:"-" json:"-" validate:"-"`
}

var reviewMessages = map[string]string{
	"review.required": "Review can not be empty!",
	"rating.required": "A review must have a rating",
	"rating.min":      "Rating must be above 1.0",
	"rating.max":      "Rating must be below 5.0",
}

func (r *Review) GetID() primitive.ObjectID { return r.ID }

func (r *Review) SetID(id primitive.ObjectID) { r.ID = id }

func (r *Review) BeforeWrite(op Op, now time.Time) {
	r.Review = strings.TrimSpace(r.Review)
	if op == OpCreate && r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
}

// Validate проверяет отзыв; тур и автор обязательны.
func (r *Review) Validate(_ Op) []apperr.FieldError {
	errs := checkStruct(r, reviewMessages)
	if r.Tour.IsZero() {
		errs = append(errs, apperr.FieldError{Field: "tour", Message: "Review must belong to a tour."})
	}
	if r.User.IsZero() {
		errs = append(errs, apperr.FieldError{Field: "user", Message: "Review must belong to a user"})
	}
	return errs
}

// MarshalJSON подставляет публичный профиль автора, если он загружен.
func (r Review) MarshalJSON() ([]byte, error) {
	type alias Review
	out := struct {
		alias
		ID   string `json:"id"`
		User any    `json:"user"`
	}{
		alias: alias(r),
		ID:    r.ID.Hex(),
		User:  r.User,
	}
	if r.Author != nil {
		out.User = r.Author.Profile()
	}
	return json.Marshal(out)
}
