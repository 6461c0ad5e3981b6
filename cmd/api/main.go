package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"

	"github.com/igorgomez/ponto-seguro-1/internal/config"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
	appHTTP "github.com/igorgomez/ponto-seguro-1/internal/handler/http"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/cron"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/database"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/jwt"
	"github.com/igorgomez/ponto-seguro-1/internal/repository/memory"
	"github.com/igorgomez/ponto-seguro-1/internal/repository/mongodb"
	"github.com/igorgomez/ponto-seguro-1/internal/repository/postgresql"
	attendanceService "github.com/igorgomez/ponto-seguro-1/internal/service/attendance"
	identityService "github.com/igorgomez/ponto-seguro-1/internal/service/identity"
	reportService "github.com/igorgomez/ponto-seguro-1/internal/service/report"
	scheduleService "github.com/igorgomez/ponto-seguro-1/internal/service/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, err := openGateway(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gateway.Close(closeCtx); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}()

	if err := gateway.Initialize(ctx); err != nil {
		slog.Error("Failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	scheduler := cron.NewScheduler()
	if cfg.Storage.HealthInterval > 0 {
		scheduler.AddJob(cron.NewStorageHealth(gateway).Job(cfg.Storage.HealthInterval))
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	identitySvc := identityService.NewIdentityService(gateway, JWTService)
	attendanceSvc := attendanceService.NewAttendanceService(gateway, gateway, cfg.Attendance.Location)
	scheduleSvc := scheduleService.NewScheduleService(gateway)
	reportSvc := reportService.NewReportService(gateway, cfg.Attendance.LateTolerance, cfg.Attendance.Location)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		},
		JWTService,
		appHTTP.NewAuthHandler(identitySvc),
		appHTTP.NewEmployeeHandler(identitySvc),
		appHTTP.NewScheduleHandler(scheduleSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewReportHandler(reportSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "backend", cfg.Storage.Backend, "timezone", cfg.Attendance.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.App.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ponto-seguro"),
		slog.String("env", cfg.App.Env),
	)
}

func openGateway(ctx context.Context, cfg *config.Config) (storage.Gateway, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), poolOptions(cfg))
		if err != nil {
			return nil, err
		}
		return postgresql.NewGateway(db), nil
	case config.BackendMongo:
		db, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database, poolOptions(cfg))
		if err != nil {
			return nil, err
		}
		return mongodb.NewGateway(db), nil
	case config.BackendMemory:
		slog.Warn("Using in-memory storage; data is lost on restart")
		return memory.NewGateway(), nil
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
}

func poolOptions(cfg *config.Config) database.PoolOptions {
	opts := database.DefaultPoolOptions()
	opts.MaxConns = int32(cfg.Database.MaxConns)
	opts.MinConns = int32(cfg.Database.MinConns)
	return opts
}
