// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков.
//
// Успешный ответ имеет статус "success", ошибка клиента (4xx) — "fail",
// ошибка сервера (5xx) — "error". Сообщения неоперационных ошибок клиенту
// не показываются.
package response

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
)

const (
	// StatusSuccess — значение статуса для успешного ответа.
	StatusSuccess = "success"
	// StatusFail — значение статуса для ошибки клиента.
	StatusFail = "fail"
	// StatusError — значение статуса для ошибки сервера.
	StatusError = "error"

	// MsgInternal — сообщение для неоперационных ошибок.
	MsgInternal = "Something went wrong!"
	// MsgInvalidBody — тело запроса не является корректным JSON.
	MsgInvalidBody = "Invalid request body"
	// MsgBodyTooLarge — тело запроса больше допустимого.
	MsgBodyTooLarge = "Request body is too large"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
type Response struct {
	Status  string              `json:"status"`
	Results *int                `json:"results,omitempty"`
	Token   string              `json:"token,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Stack   string              `json:"stack,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status  string `json:"status" example:"fail"`
	Message string `json:"message" example:"No tour found with that ID"`
}

// Success возвращает успешный Response с данными под ключом key.
func Success(key string, value any) Response {
	return Response{
		Status: StatusSuccess,
		Data:   map[string]any{key: value},
	}
}

// List возвращает успешный Response со списком и количеством элементов.
func List(key string, items any, n int) Response {
	return Response{
		Status:  StatusSuccess,
		Results: &n,
		Data:    map[string]any{key: items},
	}
}

// Message возвращает успешный Response с сообщением без данных.
func Message(msg string) Response {
	return Response{
		Status:  StatusSuccess,
		Message: msg,
	}
}

// WithToken возвращает Response входа: токен и пользователь.
func WithToken(token string, user any) Response {
	return Response{
		Status: StatusSuccess,
		Token:  token,
		Data:   map[string]any{"user": user},
	}
}

// JSON записывает ответ с кодом status.
func JSON(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// NoContent отвечает 204 без тела.
func NoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}

type ctxKey struct{}

// WithStack включает поле stack в ответах с ошибкой. Используется вне продакшена.
func WithStack(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ctxKey{}, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func stackEnabled(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKey{}).(bool)
	return v
}

// Fail отвечает ошибкой. Код и сообщение берутся из *apperr.Error;
// для остальных ошибок — 500 и MsgInternal.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	resp := Response{Status: StatusError, Message: MsgInternal}

	if e, ok := apperr.As(err); ok && apperr.IsOperational(err) {
		status = e.Kind.Status()
		resp.Message = e.Message
		resp.Errors = e.Fields
		if status < http.StatusInternalServerError {
			resp.Status = StatusFail
			log.Info("request rejected", slog.String("kind", e.Kind.String()), slog.String("message", e.Message))
		} else {
			log.Error("request failed", slog.String("kind", e.Kind.String()), sl.Err(err))
		}
	} else {
		log.Error("unexpected error", sl.Err(err))
	}

	if stackEnabled(r.Context()) {
		resp.Stack = err.Error()
	}
	JSON(w, r, status, resp)
}

// DecodeJSON читает тело запроса в v. Ошибка разбора и превышение
// лимита тела возвращаются как BadRequest.
func DecodeJSON(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return bodyError(err)
	}
	return nil
}

// ReadBody читает тело запроса целиком с теми же ошибками, что и DecodeJSON.
func ReadBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, bodyError(err)
	}
	return body, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperr.Wrap(apperr.KindBadRequest, MsgBodyTooLarge, err)
	}
	return apperr.Wrap(apperr.KindBadRequest, MsgInvalidBody, err)
}
