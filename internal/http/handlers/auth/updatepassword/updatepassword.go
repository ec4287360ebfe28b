// Package updatepassword реализует смену пароля вошедшим пользователем.
package updatepassword

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/http/session"
	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/services/auth"
)

// Request — текущий пароль и новый с подтверждением.
type Request struct {
	PasswordCurrent string `json:"passwordCurrent" example:"pass1234"`
	models.PasswordChange
}

// Handler обрабатывает смену пароля.
type Handler struct {
	log     *slog.Logger
	service Service
	cookies *session.Cookies
}

// Service описывает смену пароля с проверкой текущего.
type Service interface {
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, current, newPassword string) (*models.User, string, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, cookies *session.Cookies) *Handler {
	return &Handler{log: log, service: service, cookies: cookies}
}

// ServeHTTP godoc
// @Summary Смена пароля
// @Description Проверяет текущий пароль, сохраняет новый и выпускает новый токен. Старые токены становятся недействительными.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Пароли"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Текущий пароль неверен"
// @Router /users/updateMyPassword [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.updatepassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.New(apperr.KindNotAuthenticated, auth.MsgNotAuthenticated))
		return
	}

	var req Request
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if errs := req.PasswordChange.Validate(); len(errs) > 0 {
		response.Fail(w, r, log, apperr.Validation(errs))
		return
	}

	updated, token, err := h.service.UpdatePassword(r.Context(), user.ID, req.PasswordCurrent, req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("password updated", slog.String("user", updated.ID.Hex()))
	h.cookies.Issue(w, token)
	response.JSON(w, r, http.StatusOK, response.WithToken(token, updated))
}
