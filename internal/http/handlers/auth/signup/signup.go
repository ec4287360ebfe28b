// Package signup реализует HTTP-обработчик регистрации пользователя.
//
// Handler проверяет пароль и его подтверждение, создаёт пользователя с ролью user,
// выставляет cookie сессии и возвращает токен вместе с профилем.
package signup

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/http/session"
	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/services/auth"
)

// Request — тело запроса регистрации. Роль из запроса не принимается.
type Request struct {
	Name            string `json:"name" example:"Jonas Schmedtmann"`
	Email           string `json:"email" example:"jonas@example.com"`
	Password        string `json:"password" example:"pass1234"`
	PasswordConfirm string `json:"passwordConfirm" example:"pass1234"`
}

// Handler обрабатывает регистрацию.
type Handler struct {
	log     *slog.Logger
	service Service
	cookies *session.Cookies
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Signup(ctx context.Context, in auth.SignupInput) (*models.User, string, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, cookies *session.Cookies) *Handler {
	return &Handler{
		log:     log,
		service: service,
		cookies: cookies,
	}
}

// ServeHTTP godoc
// @Summary Регистрация
// @Description Создаёт пользователя и открывает сессию. Токен возвращается в теле и в cookie jwt.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или email занят"
// @Failure 500 {object} response.ErrorResponse
// @Router /users/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if errs := (models.PasswordChange{Password: req.Password, PasswordConfirm: req.PasswordConfirm}).Validate(); len(errs) > 0 {
		response.Fail(w, r, log, apperr.Validation(errs))
		return
	}

	user, token, err := h.service.Signup(r.Context(), auth.SignupInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		WelcomeURL: session.BaseURL(r) + "/me",
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user signed up", slog.String("user", user.ID.Hex()))
	h.cookies.Issue(w, token)
	response.JSON(w, r, http.StatusCreated, response.WithToken(token, user))
}
