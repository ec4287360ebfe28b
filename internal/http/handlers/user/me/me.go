// Package me реализует маршруты пользователя над собственным профилем:
// просмотр, изменение имени и email, деактивацию.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/services/auth"
	"github.com/magabrotheeeer/tour-booking/internal/services/user"
)

// Handler обслуживает /users/me, /users/updateMe и /users/deleteMe.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает операции над собственным профилем.
type Service interface {
	Me(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateMe(ctx context.Context, id primitive.ObjectID, in user.UpdateMeInput) (*models.User, error)
	DeleteMe(ctx context.Context, id primitive.ObjectID) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// principal возвращает пользователя из контекста или пишет 401.
func (h *Handler) principal(w http.ResponseWriter, r *http.Request, op string) (*models.User, *slog.Logger, bool) {
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	u, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.New(apperr.KindNotAuthenticated, auth.MsgNotAuthenticated))
		return nil, log, false
	}
	return u, log, true
}

// Me godoc
// @Summary Мой профиль
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, log, ok := h.principal(w, r, "handlers.user.me.Me")
	if !ok {
		return
	}

	current, err := h.service.Me(r.Context(), u.ID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.Success("user", current))
}

// UpdateMe godoc
// @Summary Изменить профиль
// @Description Меняет только имя и email. Для смены пароля есть /users/updateMyPassword.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body user.UpdateMeInput true "Имя и email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Передан пароль или данные некорректны"
// @Router /users/updateMe [patch]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	u, log, ok := h.principal(w, r, "handlers.user.me.UpdateMe")
	if !ok {
		return
	}

	var req user.UpdateMeInput
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	updated, err := h.service.UpdateMe(r.Context(), u.ID, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.Success("user", updated))
}

// DeleteMe godoc
// @Summary Удалить аккаунт
// @Description Деактивирует пользователя. Войти под ним больше нельзя.
// @Tags Users
// @Security BearerAuth
// @Success 204
// @Router /users/deleteMe [delete]
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	u, log, ok := h.principal(w, r, "handlers.user.me.DeleteMe")
	if !ok {
		return
	}

	if err := h.service.DeleteMe(r.Context(), u.ID); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.NoContent(w, r)
}
