// Package middlewarectx содержит HTTP middleware проверки сессии и прав доступа.
//
// Protect извлекает токен из заголовка Authorization (Bearer) или cookie jwt,
// проверяет его через Authenticator и кладёт пользователя в контекст запроса.
// IsLoggedIn делает то же самое, но при любой ошибке пропускает запрос анонимно.
// RestrictTo пропускает только пользователей с перечисленными ролями.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/http/session"
	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/services/auth"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для пользователя в контексте.
const User Key = "user"

// Authenticator описывает проверку сессионного токена.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, User, u)
}

// UserFromContext возвращает пользователя, положенного Protect или IsLoggedIn.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(User).(*models.User)
	return u, ok && u != nil
}

// TokenFromRequest извлекает токен: сначала Bearer из Authorization, затем cookie jwt.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer") {
		if parts := strings.Fields(h); len(parts) == 2 {
			return parts[1]
		}
		return ""
	}
	if c, err := r.Cookie(session.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Protect возвращает middleware, требующий действующую сессию.
func Protect(authenticator Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Protect"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, err := authenticator.Authenticate(r.Context(), TokenFromRequest(r))
			if err != nil {
				response.Fail(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// IsLoggedIn возвращает middleware, который загружает пользователя из cookie,
// если она есть и действительна, и никогда не отклоняет запрос.
func IsLoggedIn(authenticator Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.IsLoggedIn"

			c, err := r.Cookie(session.CookieName)
			if err != nil || c.Value == "" || c.Value == session.LoggedOut {
				next.ServeHTTP(w, r)
				return
			}
			user, err := authenticator.Authenticate(r.Context(), c.Value)
			if err != nil {
				log.Debug("anonymous request", slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("reason", apperr.KindOf(err).String()))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RestrictTo возвращает middleware, пропускающий только указанные роли.
// Должен стоять после Protect.
func RestrictTo(log *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RestrictTo"

			user, _ := UserFromContext(r.Context())
			if err := auth.Authorize(user, roles...); err != nil {
				log.Info("access denied", slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.Any("roles", roles))
				response.Fail(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
