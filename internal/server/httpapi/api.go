// Package httpapi exposes the account services over HTTP/JSON.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/services"
)

type UserService interface {
	Create(ctx context.Context, req services.NewUser) (*services.CreatedUser, error)
	Update(ctx context.Context, id int64, u services.UserUpdate) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type AuthService interface {
	IssueTokens(ctx context.Context, login, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (*models.Token, error)
}

type KeyChecker interface {
	Check(ctx context.Context, key string) error
}

// ReadyProbe reports whether dependencies are reachable; *sql.DB satisfies it.
type ReadyProbe interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators of the HTTP layer. Metrics and Ready may be nil.
type Deps struct {
	Users   UserService
	Auth    AuthService
	Keys    KeyChecker
	Ready   ReadyProbe
	Metrics *Metrics
	Log     logging.Logger

	MaxBodyBytes   int64
	TokenRateLimit float64
	TokenRateBurst int
}

// API is the HTTP surface of the accounts service.
type API struct {
	mux     *http.ServeMux
	users   UserService
	auth    AuthService
	keys    KeyChecker
	ready   ReadyProbe
	metrics *Metrics
	log     logging.Logger
	schemas *schemas

	maxBodyBytes int64
	tokenLimiter func(http.Handler) http.Handler
}

func New(d Deps) (*API, error) {
	sch, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	metrics := d.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	log := d.Log
	if log == nil {
		log = logging.Nop()
	}

	a := &API{
		mux:          http.NewServeMux(),
		users:        d.Users,
		auth:         d.Auth,
		keys:         d.Keys,
		ready:        d.Ready,
		metrics:      metrics,
		log:          log.With("module", "httpapi"),
		schemas:      sch,
		maxBodyBytes: d.MaxBodyBytes,
	}

	// one limiter shared by both token routes
	if d.TokenRateLimit > 0 {
		l := newRateLimiter(d.TokenRateLimit, d.TokenRateBurst)
		a.tokenLimiter = func(h http.Handler) http.Handler { return rateLimited(h, l) }
	} else {
		a.tokenLimiter = func(h http.Handler) http.Handler { return h }
	}

	a.routes()
	return a, nil
}

func (a *API) routes() {
	// health/ready/metrics
	a.mux.Handle("GET /healthz", a.metrics.Instrument("healthz", http.HandlerFunc(a.Healthz)))
	a.mux.Handle("GET /readyz", a.metrics.Instrument("readyz", http.HandlerFunc(a.Ready)))
	a.mux.Handle("GET /metrics", a.metrics.Handler())

	a.handle("POST", "/users", "users.create", http.HandlerFunc(a.CreateUser))
	a.handle("GET", "/users", "users.list", http.HandlerFunc(a.ListUsers))
	a.handle("GET", "/users/{id}", "users.get", http.HandlerFunc(a.GetUser))
	a.handle("PUT", "/users/{id}", "users.update", http.HandlerFunc(a.UpdateUser))
	a.handle("POST", "/tokens", "tokens.issue", a.tokenLimiter(http.HandlerFunc(a.IssueTokens)))
	a.handle("POST", "/tokens/refresh", "tokens.refresh", a.tokenLimiter(http.HandlerFunc(a.RefreshToken)))
}

// handle registers h behind the API-key gate for path with and without the
// trailing slash.
func (a *API) handle(method, path, route string, h http.Handler) {
	h = a.metrics.Instrument(route, a.RequireAPIKey(h))
	a.mux.Handle(method+" "+path, h)
	a.mux.Handle(method+" "+path+"/{$}", h)
}

// Handler returns the root handler with logging, panic recovery and the
// body size limit applied.
func (a *API) Handler() http.Handler {
	return Logging(Recover(MaxBodyBytes(a.mux, a.maxBodyBytes), a.log), a.log)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if a.ready != nil {
		if err := a.ready.PingContext(r.Context()); err != nil {
			a.log.Warn(r.Context(), "readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
