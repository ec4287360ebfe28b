// Package report реализует отчёты по турам: статистику по сложности,
// план стартов по месяцам и геопоиск.
package report

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

// Handler обслуживает маршруты отчётов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает отчёты по турам.
type Service interface {
	Stats(ctx context.Context) ([]mongodb.TourStat, error)
	MonthlyPlan(ctx context.Context, rawYear string) ([]mongodb.MonthPlan, error)
	Within(ctx context.Context, rawDistance, latlng, unit string) ([]models.Tour, error)
	Distances(ctx context.Context, latlng, unit string) ([]mongodb.TourDistance, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Stats godoc
// @Summary Статистика туров
// @Description Туры с рейтингом от 4.5, сгруппированные по сложности и отсортированные по средней цене.
// @Tags Tours
// @Produce  json
// @Success 200 {object} response.Response
// @Router /tours/tour-stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.tour.report.Stats")

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if stats == nil {
		stats = []mongodb.TourStat{}
	}
	response.JSON(w, r, http.StatusOK, response.Success("stats", stats))
}

// MonthlyPlan godoc
// @Summary План стартов по месяцам
// @Tags Tours
// @Produce  json
// @Security BearerAuth
// @Param year path int true "Год"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный год"
// @Router /tours/monthly-plan/{year} [get]
func (h *Handler) MonthlyPlan(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.tour.report.MonthlyPlan")

	plan, err := h.service.MonthlyPlan(r.Context(), chi.URLParam(r, "year"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if plan == nil {
		plan = []mongodb.MonthPlan{}
	}
	response.JSON(w, r, http.StatusOK, response.Success("plan", plan))
}

// Within godoc
// @Summary Туры в радиусе
// @Tags Tours
// @Produce  json
// @Param distance path number true "Радиус"
// @Param latlng path string true "Центр в формате lat,lng"
// @Param unit path string true "mi или km"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные координаты"
// @Router /tours/tours-within/{distance}/center/{latlng}/unit/{unit} [get]
func (h *Handler) Within(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.tour.report.Within")

	tours, err := h.service.Within(r.Context(),
		chi.URLParam(r, "distance"), chi.URLParam(r, "latlng"), chi.URLParam(r, "unit"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if tours == nil {
		tours = []models.Tour{}
	}
	response.JSON(w, r, http.StatusOK, response.List("data", tours, len(tours)))
}

// Distances godoc
// @Summary Расстояния до туров
// @Tags Tours
// @Produce  json
// @Param latlng path string true "Точка в формате lat,lng"
// @Param unit path string true "mi или km"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные координаты"
// @Router /tours/distances/{latlng}/unit/{unit} [get]
func (h *Handler) Distances(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.tour.report.Distances")

	distances, err := h.service.Distances(r.Context(), chi.URLParam(r, "latlng"), chi.URLParam(r, "unit"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if distances == nil {
		distances = []mongodb.TourDistance{}
	}
	response.JSON(w, r, http.StatusOK, response.Success("data", distances))
}
