// Package session управляет cookie с сессионным токеном.
package session

import (
	"net/http"
	"time"
)

const (
	// CookieName — имя cookie с токеном.
	CookieName = "jwt"
	// LoggedOut — значение cookie после выхода.
	LoggedOut = "loggedout"
	// LogoutTTL — время жизни cookie выхода.
	LogoutTTL = 10 * time.Second
)

// Cookies выставляет и сбрасывает cookie сессии.
type Cookies struct {
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// New создаёт Cookies. secure включает флаг Secure (только HTTPS).
func New(ttl time.Duration, secure bool) *Cookies {
	return &Cookies{ttl: ttl, secure: secure, now: time.Now}
}

// Issue записывает токен в cookie.
func (c *Cookies) Issue(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  c.now().Add(c.ttl),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear заменяет токен значением LoggedOut, которое истекает через 10 секунд.
func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    LoggedOut,
		Path:     "/",
		Expires:  c.now().Add(LogoutTTL),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
