package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/slot-arena/docs"
	"github.com/Dosada05/slot-arena/handlers"
	"github.com/Dosada05/slot-arena/metrics"
	"github.com/Dosada05/slot-arena/middleware"
	"github.com/Dosada05/slot-arena/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Registration *handlers.RegistrationHandler
	Tournament   *handlers.TournamentHandler
	Upload       *handlers.UploadHandler
	Dashboard    *handlers.DashboardHandler
	WebSocket    *handlers.WebSocketHandler
	Health       *handlers.HealthHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// PublicLimiter ограничивает подачу заявок и загрузку скриншотов.
	PublicLimiter *middleware.RateLimiter
	Logger        *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(metrics.Middleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret, opts.Logger)
	requires := middleware.RequirePermission

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Route("/ws/tournaments", func(r chi.Router) {
		r.Get("/", h.WebSocket.ServeWs)
		r.Get("/{gameType}/{tournamentType}", h.WebSocket.ServeWs)
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/health", h.Health.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/init", h.Auth.Init)
			r.Post("/logout", h.Auth.Logout)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.List)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.With(requires(models.PermManageTournaments)).Put("/", h.Tournament.Update)
				r.With(requires(models.PermManageTournaments)).Post("/init", h.Tournament.Init)
				r.With(requires(models.PermResetTournaments)).Post("/reset", h.Tournament.Reset)
			})
		})

		r.Route("/registrations", func(r chi.Router) {
			r.With(opts.PublicLimiter.Middleware).Post("/", h.Registration.Submit)
			r.Get("/{id}", h.Registration.Get)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.With(requires(models.PermViewRegistrations)).Get("/", h.Registration.List)
				// право на approve/reject проверяется в обработчике по целевому статусу
				r.Patch("/{id}", h.Registration.Decide)
				r.With(requires(models.PermDeleteRegistration)).Delete("/{id}", h.Registration.Delete)
			})
		})

		r.With(opts.PublicLimiter.Middleware).Post("/upload", h.Upload.UploadPayment)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)
			r.With(requires(models.PermUploadQRCodes)).Post("/qr-code", h.Upload.UploadQRCode)
			r.With(requires(models.PermViewAnalytics)).Get("/stats", h.Dashboard.Stats)
			r.With(requires(models.PermManageTournaments)).Post("/reconcile", h.Tournament.Reconcile)
		})
	})
}
