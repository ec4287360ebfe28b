// Package resetpassword реализует установку нового пароля по токену из письма.
package resetpassword

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/http/session"
	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// Handler обрабатывает сброс пароля.
type Handler struct {
	log     *slog.Logger
	service Service
	cookies *session.Cookies
}

// Service описывает смену пароля по токену сброса.
type Service interface {
	ResetPassword(ctx context.Context, plainToken, newPassword string) (*models.User, string, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, cookies *session.Cookies) *Handler {
	return &Handler{log: log, service: service, cookies: cookies}
}

// ServeHTTP godoc
// @Summary Сброс пароля
// @Description Устанавливает новый пароль по одноразовому токену и открывает сессию.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param token path string true "Токен из письма"
// @Param request body models.PasswordChange true "Новый пароль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Токен недействителен или истёк"
// @Router /users/resetPassword/{token} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PasswordChange
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		response.Fail(w, r, log, apperr.Validation(errs))
		return
	}

	user, token, err := h.service.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("password reset", slog.String("user", user.ID.Hex()))
	h.cookies.Issue(w, token)
	response.JSON(w, r, http.StatusOK, response.WithToken(token, user))
}
