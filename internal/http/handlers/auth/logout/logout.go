// Package logout реализует выход: cookie сессии заменяется значением loggedout.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/http/session"
)

// Handler обрабатывает выход пользователя.
type Handler struct {
	log     *slog.Logger
	cookies *session.Cookies
}

// New создает новый Handler.
func New(log *slog.Logger, cookies *session.Cookies) *Handler {
	return &Handler{log: log, cookies: cookies}
}

// ServeHTTP godoc
// @Summary Выход
// @Tags Users
// @Produce  json
// @Success 200 {object} response.Response
// @Router /users/logout [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	h.log.Debug("session cleared",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.cookies.Clear(w)
	response.JSON(w, r, http.StatusOK, response.Response{Status: response.StatusSuccess})
}
