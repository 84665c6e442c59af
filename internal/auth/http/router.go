package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prismtv/prism/internal/auth/service"
	"github.com/prismtv/prism/internal/auth/session"
	"github.com/prismtv/prism/internal/auth/store"
	"github.com/prismtv/prism/pkg/httpx"
	"github.com/prismtv/prism/pkg/slogx"

	_ "github.com/prismtv/prism/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	sessions session.Store

	AuthService *service.AuthService
}

func NewRouter(
	authService *service.AuthService,
	st store.Store,
	sessions session.Store,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		sessions:     sessions,
		AuthService:  authService,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerStream()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Prism Authentication Service API
//	@version		0.1.0
//	@description	Session-backed authentication for the Prism media platform. Issues short-lived
//	@description	HMAC-signed access tokens anchored to server-side sessions, plus stream-scoped
//	@description	tokens for handoff to the media edge.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	r.Mux.Handle("POST /v1/auth/register", &RegisterHandler{AuthService: r.AuthService})
	r.Mux.Handle("POST /v1/auth/login", &LoginHandler{AuthService: r.AuthService})
	r.Mux.Handle("POST /v1/auth/refresh", &RefreshHandler{AuthService: r.AuthService})
	r.Mux.Handle("POST /v1/auth/logout", &LogoutHandler{AuthService: r.AuthService})
	r.Mux.Handle("POST /v1/auth/logout-all", &LogoutAllHandler{AuthService: r.AuthService})
	r.Mux.Handle("GET /v1/auth/sessions", &SessionsHandler{AuthService: r.AuthService})
}

func (r *Router) registerStream() {
	r.Mux.Handle("POST /v1/stream/{id}/token", &StreamTokenHandler{AuthService: r.AuthService})
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.sessions))
}
