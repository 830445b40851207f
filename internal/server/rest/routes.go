// Package rest exposes the DrivenPass API over HTTP/JSON.
package rest

import (
	"net/http"

	"github.com/dmitrijs2005/drivenpass/internal/logging"
	"github.com/dmitrijs2005/drivenpass/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the router dispatches to. Metrics may be nil,
// and a SignInPerMinute of zero disables the sign-in limiter.
type Deps struct {
	Users       UserService
	Credentials CredentialService
	Cards       CardService
	Notes       NoteService
	Exports     ExportService
	DB          Pinger
	Metrics     *metrics.HTTPMetrics

	SignInPerMinute int
	Log             logging.Logger
}

// NewRouter mounts every route:
//
//	POST   /user/auth/sign-up
//	POST   /user/auth/sign-in      (rate limited per client address)
//	DELETE /user/erase             (guarded)
//	/credentials, /cards, /notes   (guarded CRUD, plus GET /cards/types)
//	POST   /vault/export           (guarded)
//	GET    /health, GET /metrics
func NewRouter(d Deps) http.Handler {
	users := &UserHandler{Users: d.Users, Log: d.Log}
	credentials := &CredentialHandler{Credentials: d.Credentials, Log: d.Log}
	cards := &CardHandler{Cards: d.Cards, Log: d.Log}
	notes := &NoteHandler{Notes: d.Notes, Log: d.Log}
	exports := &ExportHandler{Exports: d.Exports, Log: d.Log}
	health := &HealthHandler{DB: d.DB, Log: d.Log}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(d.Log))
	r.Use(chiMiddleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(requireJSON)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	r.Get("/health", health.Health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/user", func(r chi.Router) {
		r.Post("/auth/sign-up", users.SignUp)
		r.Group(func(r chi.Router) {
			if d.SignInPerMinute > 0 {
				r.Use(newIPLimiter(d.SignInPerMinute).middleware)
			}
			r.Post("/auth/sign-in", users.SignIn)
		})
		r.With(authMiddleware(d.Users, d.Log)).Delete("/erase", users.Erase)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(d.Users, d.Log))

		r.Route("/credentials", func(r chi.Router) {
			r.Post("/", credentials.Create)
			r.Get("/", credentials.List)
			r.Get("/{id}", credentials.Get)
			r.Delete("/{id}", credentials.Delete)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cards.Create)
			r.Get("/", cards.List)
			r.Get("/types", cards.Types)
			r.Get("/{id}", cards.Get)
			r.Delete("/{id}", cards.Delete)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", notes.Create)
			r.Get("/", notes.List)
			r.Get("/{id}", notes.Get)
			r.Delete("/{id}", notes.Delete)
		})

		r.Post("/vault/export", exports.Export)
	})

	return r
}
