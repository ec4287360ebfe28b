package mongodb

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
)

// ErrNotFound — документ не найден.
var ErrNotFound = errors.New("document not found")

var dupKeyValue = regexp.MustCompile(`dup key: \{\s*(.*?)\s*\}`)

// ParseID разбирает hex-идентификатор документа.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap(apperr.KindBadRequest, fmt.Sprintf("Invalid _id: %s.", id), err)
	}
	return oid, nil
}

// classify переводит ошибку драйвера в ошибку хранилища.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.KindDuplicateKey, duplicateMessage(err), err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// duplicateMessage достаёт значение из "dup key: { name: \"X\" }".
func duplicateMessage(err error) string {
	value := "unknown"
	if m := dupKeyValue.FindStringSubmatch(err.Error()); len(m) == 2 {
		value = m[1]
		if i := strings.Index(value, ":"); i >= 0 {
			value = strings.TrimSpace(value[i+1:])
		}
	}
	return fmt.Sprintf("Duplicate field value: %s. Please use another value!", value)
}
