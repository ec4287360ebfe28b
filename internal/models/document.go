// Package models содержит доменные модели туров, пользователей и отзывов,
// их правила валидации и подготовку к записи в MongoDB.
package models

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
)

// Op — вид записи документа.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
)

// Document — запись коллекции, с которой работает обобщённый ресурсный сервис.
type Document interface {
	GetID() primitive.ObjectID
	SetID(id primitive.ObjectID)
	// BeforeWrite нормализует документ и проставляет значения по умолчанию.
	BeforeWrite(op Op, now time.Time)
	// Validate проверяет документ целиком, после слияния с патчем.
	Validate(op Op) []apperr.FieldError
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// checkStruct прогоняет теги validate и переводит нарушения в сообщения.
// messages индексируется строкой "поле.тег"; для неизвестных пар сообщение строится по умолчанию.
func checkStruct(s any, messages map[string]string) []apperr.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperr.FieldError{{Message: err.Error()}}
	}
	out := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = defaultMessage(fe)
		}
		out = append(out, apperr.FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Please provide " + fe.Field()
	case "email":
		return "Please provide a valid email"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be at most " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// RoundSignificant округляет v до digits значащих цифр.
func RoundSignificant(v float64, digits int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', digits, 64), 64)
	if err != nil {
		return v
	}
	return r
}
