// Package forgotpassword реализует запрос ссылки сброса пароля.
//
// Ссылка строится от адреса, по которому пришёл запрос:
// {scheme}://{host}/api/v1/users/resetPassword/{token}.
package forgotpassword

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/http/session"
)

// MsgSent — ответ после отправки письма.
const MsgSent = "Token sent to email!"

// ResetPath — путь маршрута сброса без токена.
const ResetPath = "/api/v1/users/resetPassword/"

// Request — тело запроса.
type Request struct {
	Email string `json:"email" example:"jonas@example.com"`
}

// Handler обрабатывает запрос на сброс пароля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выпуск и отправку токена сброса.
type Service interface {
	ForgotPassword(ctx context.Context, email string, resetURL func(token string) string) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Забыли пароль
// @Description Отправляет на почту ссылку сброса пароля, действительную 10 минут.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Email пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Письмо не отправлено"
// @Router /users/forgotPassword [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	base := session.BaseURL(r)
	err := h.service.ForgotPassword(r.Context(), req.Email, func(token string) string {
		return base + ResetPath + token
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.Message(MsgSent))
}
