// Package login реализует HTTP-обработчик входа по email и паролю.
//
// При успехе выставляет cookie сессии и возвращает токен с профилем пользователя.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/http/session"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// Request — учетные данные.
type Request struct {
	Email    string `json:"email" example:"admin@natours.io"`
	Password string `json:"password" example:"test1234"`
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log     *slog.Logger
	service Service
	cookies *session.Cookies
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, cookies *session.Cookies) *Handler {
	return &Handler{
		log:     log,
		service: service,
		cookies: cookies,
	}
}

// ServeHTTP godoc
// @Summary Вход
// @Description Проверяет email и пароль. Токен возвращается в теле и в cookie jwt.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Не указан email или пароль"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse
// @Router /users/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("login success", slog.String("user", user.ID.Hex()))
	h.cookies.Issue(w, token)
	response.JSON(w, r, http.StatusOK, response.WithToken(token, user))
}
