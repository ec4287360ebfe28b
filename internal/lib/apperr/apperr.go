// Package apperr описывает операционные ошибки приложения.
//
// Операционная ошибка несёт вид (Kind), по которому HTTP-слой выбирает код
// ответа, и сообщение, которое безопасно показывать клиенту. Всё, что не
// является *Error, считается внутренней ошибкой и клиенту не раскрывается.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind классифицирует ошибку.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindNotAuthenticated
	KindInvalidToken
	KindExpiredToken
	KindStaleToken
	KindPrincipalNotFound
	KindIncorrectCredentials
	KindForbidden
	KindDuplicateKey
	KindBadRequest
	KindInvalidOrExpiredToken
	KindTooManyRequests
	KindDeliveryFailed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFound"
	case KindNotAuthenticated:
		return "NotAuthenticated"
	case KindInvalidToken:
		return "InvalidToken"
	case KindExpiredToken:
		return "ExpiredToken"
	case KindStaleToken:
		return "StaleToken"
	case KindPrincipalNotFound:
		return "PrincipalNotFound"
	case KindIncorrectCredentials:
		return "IncorrectCredentials"
	case KindForbidden:
		return "Forbidden"
	case KindDuplicateKey:
		return "DuplicateKey"
	case KindBadRequest:
		return "BadRequest"
	case KindInvalidOrExpiredToken:
		return "InvalidOrExpiredToken"
	case KindTooManyRequests:
		return "TooManyRequests"
	case KindDeliveryFailed:
		return "DeliveryFailed"
	default:
		return "Internal"
	}
}

// Status возвращает HTTP-код для вида ошибки.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindDuplicateKey, KindBadRequest, KindInvalidOrExpiredToken:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNotAuthenticated, KindInvalidToken, KindExpiredToken, KindStaleToken,
		KindPrincipalNotFound, KindIncorrectCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FieldError — нарушение правила валидации одного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error — операционная ошибка.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создаёт операционную ошибку.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf создаёт операционную ошибку с форматированным сообщением.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap создаёт операционную ошибку поверх исходной.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation собирает ошибки полей в одну ошибку валидации.
func Validation(fields []FieldError) *Error {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	return &Error{
		Kind:    KindValidation,
		Message: "Invalid input data. " + strings.Join(msgs, ". "),
		Fields:  fields,
	}
}

// NotFound возвращает ошибку отсутствующего документа указанного вида.
func NotFound(kindName string) *Error {
	return Newf(KindNotFound, "No %s found with that ID", kindName)
}

// As извлекает *Error из цепочки ошибок.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf возвращает вид ошибки; всё неизвестное — KindInternal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is сообщает, относится ли ошибка к указанному виду.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsOperational сообщает, можно ли показать сообщение ошибки клиенту.
// KindDeliveryFailed отвечает 500, но остаётся операционной.
func IsOperational(err error) bool {
	e, ok := As(err)
	return ok && e.Kind != KindInternal
}
