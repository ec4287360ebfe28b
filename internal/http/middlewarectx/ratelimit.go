package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/middleware"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
)

// MsgTooManyRequests возвращается при превышении лимита.
const MsgTooManyRequests = "Too many requests from this IP, please try again in an hour."

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает число запросов с одного IP: requests за window.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter создаёт RateLimiter. Корзина на IP вмещает requests запросов
// и полностью восстанавливается за window.
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests < 1 {
		requests = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		window:   window,
		now:      time.Now,
	}
}

func (l *RateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Cleanup удаляет IP, не появлявшиеся дольше окна лимита.
func (l *RateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > l.window {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}

// Middleware возвращает HTTP middleware лимита.
func (l *RateLimiter) Middleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RateLimit"

			ip := clientIP(r)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
			if !l.allow(ip) {
				log.Warn("too many requests", slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("ip", ip))
				w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
				response.Fail(w, r, log, apperr.New(apperr.KindTooManyRequests, MsgTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP отрезает порт от RemoteAddr. Заголовки прокси учитывает middleware.RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
