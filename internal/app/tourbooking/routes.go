// Package tourbooking собирает HTTP API: хранилище, сервисы, обработчики и маршруты.
package tourbooking

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/bson"

	_ "github.com/magabrotheeeer/tour-booking/docs"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/updatepassword"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/factory"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/health"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/tour/report"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/http/session"
	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	authservice "github.com/magabrotheeeer/tour-booking/internal/services/auth"
	tourservice "github.com/magabrotheeeer/tour-booking/internal/services/tour"
	userservice "github.com/magabrotheeeer/tour-booking/internal/services/user"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

// Deps — всё, что нужно маршрутам.
type Deps struct {
	Log         *slog.Logger
	Production  bool
	Registry    *prometheus.Registry
	RateLimiter *middlewarectx.RateLimiter
	Cookies     *session.Cookies
	DB          health.Pinger

	Auth    *authservice.AuthService
	Users   *userservice.UserService
	Reports *tourservice.TourService

	TourCRUD   factory.Service[models.Tour]
	UserCRUD   factory.Service[models.User]
	ReviewCRUD factory.Service[models.Review]
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	log := d.Log

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.SecureHeaders,
		middlewarectx.NewMetrics(d.Registry).Middleware,
		middlewarectx.BodyLimit(middlewarectx.DefaultBodyLimit),
	)
	if !d.Production {
		r.Use(response.WithStack)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, r, log, apperr.Newf(apperr.KindNotFound, "Cannot find %s on this server.", r.URL.RequestURI()))
	})

	protect := middlewarectx.Protect(d.Auth, log)
	restrictTo := func(roles ...string) func(http.Handler) http.Handler {
		return middlewarectx.RestrictTo(log, roles...)
	}

	tours := factory.New(log, "tour", d.TourCRUD)
	topTours := factory.New(log, "tour", d.TourCRUD, factory.WithQuery[models.Tour](tourservice.AliasTopTours))
	users := factory.New(log, "user", d.UserCRUD)
	reviews := factory.New(log, "review", d.ReviewCRUD, factory.WithPrepare(setTourUserIDs))
	tourReviews := factory.New(log, "review", d.ReviewCRUD,
		factory.WithOwner[models.Review](tourOwner),
		factory.WithPrepare(setTourUserIDs),
	)
	reports := report.New(log, d.Reports)
	profile := me.New(log, d.Users)

	r.Route("/api", func(r chi.Router) {
		r.Use(d.RateLimiter.Middleware(log))

		r.Route("/v1", func(r chi.Router) {
			r.Route("/tours", func(r chi.Router) {
				r.Get("/top-5-cheap", topTours.GetAll)
				r.Get("/tour-stats", reports.Stats)
				r.With(protect, restrictTo(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide)).
					Get("/monthly-plan/{year}", reports.MonthlyPlan)
				r.Get("/tours-within/{distance}/center/{latlng}/unit/{unit}", reports.Within)
				r.Get("/distances/{latlng}/unit/{unit}", reports.Distances)

				r.Get("/", tours.GetAll)
				r.With(protect, restrictTo(models.RoleAdmin, models.RoleLeadGuide)).Post("/", tours.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", tours.GetOne)
					r.With(protect, restrictTo(models.RoleAdmin, models.RoleLeadGuide)).Patch("/", tours.Update)
					r.With(protect, restrictTo(models.RoleAdmin, models.RoleLeadGuide)).Delete("/", tours.Delete)

					r.Route("/reviews", func(r chi.Router) {
						r.Use(protect)
						r.Get("/", tourReviews.GetAll)
						r.With(restrictTo(models.RoleUser)).Post("/", tourReviews.Create)
					})
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Post("/signup", signup.New(log, d.Auth, d.Cookies).ServeHTTP)
				r.Post("/login", login.New(log, d.Auth, d.Cookies).ServeHTTP)
				r.Get("/logout", logout.New(log, d.Cookies).ServeHTTP)
				r.Post("/forgotPassword", forgotpassword.New(log, d.Auth).ServeHTTP)
				r.Patch("/resetPassword/{token}", resetpassword.New(log, d.Auth, d.Cookies).ServeHTTP)

				r.Group(func(r chi.Router) {
					r.Use(protect)
					r.Patch("/updateMyPassword", updatepassword.New(log, d.Auth, d.Cookies).ServeHTTP)
					r.Get("/me", profile.Me)
					r.Patch("/updateMe", profile.UpdateMe)
					r.Delete("/deleteMe", profile.DeleteMe)

					r.Group(func(r chi.Router) {
						r.Use(restrictTo(models.RoleAdmin))
						r.Get("/", users.GetAll)
						r.Get("/{id}", users.GetOne)
						r.Patch("/{id}", users.Update)
						r.Delete("/{id}", users.Delete)
					})
				})
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Use(protect)
				r.Get("/", reviews.GetAll)
				r.With(restrictTo(models.RoleUser)).Post("/", reviews.Create)
				r.Get("/{id}", reviews.GetOne)
				r.With(restrictTo(models.RoleUser, models.RoleAdmin)).Patch("/{id}", reviews.Update)
				r.With(restrictTo(models.RoleUser, models.RoleAdmin)).Delete("/{id}", reviews.Delete)
			})
		})
	})

	r.Get("/health", health.New(log, d.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

}

// tourOwner сужает список отзывов туром из маршрута /tours/{id}/reviews.
func tourOwner(r *http.Request) (bson.D, error) {
	id, err := mongodb.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: "tour", Value: id}}, nil
}

// setTourUserIDs проставляет отзыву тур из маршрута и автора из сессии.
// Автор из тела запроса игнорируется.
func setTourUserIDs(r *http.Request, doc *models.Review) error {
	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := mongodb.ParseID(raw)
		if err != nil {
			return err
		}
		doc.Tour = id
	}
	u, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		return apperr.New(apperr.KindNotAuthenticated, authservice.MsgNotAuthenticated)
	}
	doc.User = u.ID
	return nil
}
