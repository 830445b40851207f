package rest

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/logging"
	"github.com/dmitrijs2005/drivenpass/internal/server/auth"
	"github.com/dmitrijs2005/drivenpass/internal/server/metrics"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

const (
	msgAuthorizationMissing = "Authorization must be provided"
	msgTokenMissing         = "Token must be provided"
	msgTooManyRequests      = "Too many sign-in attempts, try again later"
	msgUnsupportedMedia     = "Content-Type must be application/json"
)

var allowJSON = middleware.AllowContentType("application/json")

// requireJSON rejects request bodies that are not JSON. chi's
// AllowContentType makes the decision; the 415 it writes is replaced by the
// error envelope.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pass := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		})
		allowJSON(pass).ServeHTTP(&mediaTypeRejecter{ResponseWriter: w}, r)
	})
}

type mediaTypeRejecter struct {
	http.ResponseWriter
}

func (m *mediaTypeRejecter) WriteHeader(code int) {
	if code == http.StatusUnsupportedMediaType {
		writeError(m.ResponseWriter, code, msgUnsupportedMedia)
		return
	}
	m.ResponseWriter.WriteHeader(code)
}

// requestInfo is filled in by inner middleware so the request logger can
// report who made the call.
type requestInfo struct {
	userID int64
}

type requestInfoKey struct{}

func requestInfoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(*requestInfo)
	return info
}

// requestLogger logs one line per request once the response is written.
func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := &requestInfo{}
			r = r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				"method", r.Method,
				"route", metrics.RoutePattern(r),
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}
			if info.userID != 0 {
				args = append(args, "user_id", info.userID)
			}
			log.Info(r.Context(), "request", args...)
		})
	}
}

// authMiddleware resolves the bearer token and stores the identity in the
// request context. Every failure is a 401.
func authMiddleware(users UserService, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthorizationHeaderName)
			if header == "" {
				writeError(w, http.StatusUnauthorized, msgAuthorizationMissing)
				return
			}

			scheme, token, _ := strings.Cut(strings.TrimSpace(header), " ")
			token = strings.TrimSpace(token)
			if token == "" {
				writeError(w, http.StatusUnauthorized, msgTokenMissing)
				return
			}
			if !strings.EqualFold(scheme, common.BearerScheme) {
				writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
				return
			}

			id, err := users.Authenticate(r.Context(), token)
			if err != nil {
				if statusOf(err) == http.StatusUnauthorized {
					writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
					return
				}
				writeServiceError(w, r, log, err)
				return
			}

			if info := requestInfoFrom(r.Context()); info != nil {
				info.userID = id.ID
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// mustIdentity returns the identity set by authMiddleware. Handlers that
// call it are only mounted behind the guard.
func mustIdentity(r *http.Request) *auth.Identity {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		panic("rest: handler mounted without auth middleware")
	}
	return id
}

const limiterIdleExpiry = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client address.
type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	limit     rate.Limit
	burst     int
	now       func() time.Time
}

// newIPLimiter allows perMinute requests per minute per address, bursting
// up to perMinute.
func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
	}
}

func (l *ipLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterIdleExpiry {
		l.sweep(now)
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops addresses idle for longer than limiterIdleExpiry. Callers
// hold l.mu.
func (l *ipLimiter) sweep(now time.Time) {
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleExpiry {
			delete(l.visitors, k)
		}
	}
	l.lastSweep = now
}

func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
