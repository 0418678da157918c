package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arjunmehta/roadwatch-backend/api/controllers"
	"github.com/arjunmehta/roadwatch-backend/api/middleware"
	"github.com/arjunmehta/roadwatch-backend/internal/auth"
	"github.com/arjunmehta/roadwatch-backend/internal/detection"
	"github.com/arjunmehta/roadwatch-backend/internal/media"
	"github.com/arjunmehta/roadwatch-backend/internal/violations"
	"github.com/arjunmehta/roadwatch-backend/pkg/auth/session"
	"github.com/arjunmehta/roadwatch-backend/pkg/config"
	"github.com/arjunmehta/roadwatch-backend/pkg/db"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	"github.com/arjunmehta/roadwatch-backend/pkg/logger"
	"github.com/arjunmehta/roadwatch-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              *db.Client
	Redis           *redis.Client
	SessionManager  *session.Manager
	AuthService     auth.Service
	RegisterService auth.RegisterService
	Violations      violations.Service
	Media           media.Service
	Pipeline        *detection.Pipeline
	Registry        *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Get("/auth/me", controllers.AuthMe(deps.AuthService, logg))

		r.Route("/violations", func(r chi.Router) {
			r.Post("/", controllers.ViolationCreate(deps.Violations, deps.Media, logg))
			r.Get("/my", controllers.ViolationListMine(deps.Violations, logg))
			r.Post("/detect/image", controllers.DetectUpload(deps.Pipeline, enums.MediaKindImage, logg))
			r.Post("/detect/video", controllers.DetectUpload(deps.Pipeline, enums.MediaKindVideo, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.OfficerRoleAdmin), logg))
				r.Get("/", controllers.AdminViolationList(deps.Violations, logg))
			})
		})
	})

	return r
}
