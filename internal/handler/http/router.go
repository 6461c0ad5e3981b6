package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/igorgomez/ponto-seguro-1/internal/handler/http/middleware"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/jwt"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	authHandler AuthHandler,
	employeeHandler EmployeeHandler,
	scheduleHandler ScheduleHandler,
	attendanceHandler AttendanceHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/change-password", authHandler.ChangePassword)

			r.Get("/work-schedules/me", scheduleHandler.GetMine)

			r.Route("/time-records", func(r chi.Router) {
				r.Post("/punch", attendanceHandler.Punch)
				r.Get("/today/me", attendanceHandler.TodayMine)
				r.Get("/me", attendanceHandler.HistoryMine)
				r.Get("/{id}", attendanceHandler.Get)
				r.Get("/{id}/hours", reportHandler.Hours)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", attendanceHandler.List)
					r.Get("/today", attendanceHandler.Today)
					r.Get("/recent", attendanceHandler.Recent)
					r.Patch("/{id}", attendanceHandler.Edit)
				})
			})

			r.Get("/reports/me/reconcile", reportHandler.ReconcileMine)
			r.Get("/reports/me/bank", reportHandler.BankMine)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", employeeHandler.List)
					r.Post("/", employeeHandler.Create)
					r.Patch("/{id}/toggle-status", employeeHandler.ToggleStatus)
					r.Post("/{id}/reset-password", employeeHandler.ResetPassword)
				})

				r.Get("/work-schedules/{employeeID}", scheduleHandler.Get)
				r.Put("/work-schedules/{employeeID}", scheduleHandler.Replace)

				r.Get("/activities/recent", attendanceHandler.RecentActivities)

				r.Get("/reports/dashboard", reportHandler.Dashboard)
				r.Get("/reports/{employeeID}/reconcile", reportHandler.Reconcile)
				r.Get("/reports/{employeeID}/bank", reportHandler.Bank)
			})
		})
	})
	return r
}
