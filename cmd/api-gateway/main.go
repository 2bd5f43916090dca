package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/planforge/resplan-api/api/swagger"
	"github.com/planforge/resplan-api/internal/handler"
	"github.com/planforge/resplan-api/internal/middleware"
	"github.com/planforge/resplan-api/internal/models"
	"github.com/planforge/resplan-api/internal/planstore"
	"github.com/planforge/resplan-api/internal/repository"
	"github.com/planforge/resplan-api/internal/service"
	"github.com/planforge/resplan-api/pkg/cache"
	"github.com/planforge/resplan-api/pkg/config"
	"github.com/planforge/resplan-api/pkg/database"
	"github.com/planforge/resplan-api/pkg/jobs"
	"github.com/planforge/resplan-api/pkg/logger"
	corsmiddleware "github.com/planforge/resplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/planforge/resplan-api/pkg/middleware/requestid"
	"github.com/planforge/resplan-api/pkg/storage"
)

const (
	exportResultTTL       = 24 * time.Hour
	exportCleanupInterval = time.Hour
)

// @title ResPlan API
// @version 1.0.0
// @description Capacity planning, forecasting and reporting for project teams
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Planner.StatsCacheTTL, logr, cfg.Planner.StatsCacheEnabled)
	}

	holidayRepo := repository.NewHolidayRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	reportRepo := repository.NewReportRepository(db)
	userRepo := repository.NewUserRepository(db)

	store := buildStore(ctx, cfg, logr, snapshotRepo, holidayRepo)

	capacitySvc := service.NewCapacityService(store, logr)
	statsSvc := service.NewStatsService(store, capacitySvc, cacheSvc, logr, service.StatsServiceConfig{
		CacheTTL:         cfg.Planner.StatsCacheTTL,
		TopProjectsLimit: cfg.Planner.TopProjectsLimit,
	})
	forecastSvc := service.NewForecastService(store, capacitySvc, cacheSvc, logr, service.ForecastServiceConfig{
		DefaultRunningVolume: cfg.Forecast.DefaultRunningVolume,
		HorizonQuarters:      cfg.Forecast.HorizonQuarters,
		HoursPerDay:          cfg.Planner.HoursPerDay,
		DefaultHourlyRate:    cfg.Planner.DefaultHourlyRate,
		CacheTTL:             cfg.Forecast.CacheTTL,
	})
	assignmentSvc := service.NewAssignmentService(store, validate, cacheSvc, metricsSvc, logr)
	forecastEditSvc := service.NewForecastEditService(store, validate, cacheSvc, metricsSvc, logr)
	planSvc := service.NewPlanService(store, cacheSvc, logr, cfg.Planner.StatsCacheTTL)
	holidaySvc := service.NewHolidayService(store, holidayRepo, cacheSvc, logr)
	analysisSvc := service.NewAnalysisService(store, cfg.Analysis, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "resplan-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)

	versionSvc := newVersionService(cfg, store, snapshotRepo, validate, cacheSvc, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	authHandler := handler.NewAuthHandler(authSvc)
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/auth/me", authHandler.Me)

	userHandler := handler.NewUserHandler(userSvc)
	users := authed.Group("/users")
	users.GET("", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
	users.POST("", middleware.RequireRoles(models.RoleAdmin), userHandler.Create)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
	users.PUT("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Update)
	users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Delete)

	planners := middleware.RequireRoles(models.RoleAdmin, models.RolePlanner)

	planHandler := handler.NewPlanHandler(planSvc, holidaySvc)
	authed.GET("/plan/board", planHandler.Board)
	authed.GET("/employees", planHandler.Employees)
	authed.GET("/projects", planHandler.Projects)
	authed.GET("/holidays", planHandler.Holidays)
	authed.POST("/holidays", planners, planHandler.AddHoliday)
	authed.DELETE("/holidays/:date", planners, planHandler.RemoveHoliday)

	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	authed.POST("/assignments", planners, assignmentHandler.Add)
	authed.DELETE("/assignments/:id", planners, assignmentHandler.Remove)
	authed.PATCH("/assignments/:id/move", planners, assignmentHandler.Move)
	authed.POST("/assignments/replace-day", planners, assignmentHandler.ReplaceDay)
	authed.POST("/assignments/pattern", planners, assignmentHandler.ApplyPattern)
	authed.POST("/absences", planners, assignmentHandler.AddAbsence)
	authed.POST("/absences/span", planners, assignmentHandler.AddAbsenceSpan)
	authed.DELETE("/absences/:id", planners, assignmentHandler.RemoveAbsence)

	statsHandler := handler.NewStatsHandler(statsSvc, capacitySvc)
	authed.GET("/stats/months/:month", statsHandler.MonthStats)
	authed.GET("/stats/months/:month/employees", statsHandler.EmployeeMonthStats)
	authed.GET("/stats/months/:month/conflicts", statsHandler.Conflicts)
	authed.GET("/stats/utilization", statsHandler.Utilization)
	authed.GET("/employees/:id/utilization", statsHandler.EmployeeUtilization)

	forecastHandler := handler.NewForecastHandler(forecastSvc, forecastEditSvc)
	authed.GET("/forecast", forecastHandler.Projections)
	authed.GET("/forecast/revenue", forecastHandler.Revenue)
	authed.GET("/forecast/financials", forecastHandler.Financials)
	authed.GET("/forecast/:quarterId", forecastHandler.Projection)
	authed.POST("/forecast/:quarterId/opportunities", planners, forecastHandler.AddOpportunity)
	authed.PATCH("/forecast/:quarterId/opportunities/:entryId", planners, forecastHandler.UpdateOpportunity)
	authed.DELETE("/forecast/:quarterId/opportunities/:entryId", planners, forecastHandler.RemoveOpportunity)
	authed.POST("/forecast/:quarterId/opportunities/:entryId/promote", planners, forecastHandler.PromoteOpportunity)
	authed.PATCH("/forecast/:quarterId/running/:entryId", planners, forecastHandler.SetRunningVolume)

	versionHandler := handler.NewVersionHandler(versionSvc)
	authed.GET("/versions", versionHandler.List)
	authed.GET("/versions/:id", versionHandler.Get)
	authed.POST("/versions", planners, middleware.Audit(userRepo, models.AuditActionVersionCreate, "version"), versionHandler.Create)
	authed.POST("/versions/:id/activate", planners, middleware.Audit(userRepo, models.AuditActionVersionActivate, "version"), versionHandler.Activate)
	authed.POST("/plan/snapshot", planners, middleware.Audit(userRepo, models.AuditActionSnapshotSave, "plan"), versionHandler.SaveSnapshot)
	authed.POST("/plan/snapshot/restore", planners, middleware.Audit(userRepo, models.AuditActionSnapshotRestore, "plan"), versionHandler.LoadSnapshot)

	if cfg.Analysis.Enabled {
		analysisHandler := handler.NewAnalysisHandler(analysisSvc)
		authed.POST("/analysis/month", analysisHandler.AnalyzeMonth)
		authed.POST("/analysis/chat", analysisHandler.Chat)
	}

	if cfg.Exports.Enabled {
		localStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.JWT.Secret, exportResultTTL)
		exportSvc := service.NewExportService(service.ExportServiceParams{
			Plan:     store,
			Stats:    statsSvc,
			Capacity: capacitySvc,
			Forecast: forecastSvc,
			Storage:  localStorage,
			Signer:   signer,
			Logger:   logr,
			Config: service.ExportConfig{
				APIPrefix: cfg.APIPrefix,
				ResultTTL: exportResultTTL,
			},
		})
		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
		queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		reportSvc := service.NewReportService(reportRepo, queue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       exportResultTTL,
			CleanupInterval: exportCleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)

		reportHandler := handler.NewReportHandler(reportSvc, logr)
		authed.POST("/reports/generate", reportHandler.GenerateReport)
		authed.GET("/reports/status/:id", reportHandler.ReportStatus)
		api.GET("/export/:token", reportHandler.DownloadReport)
	}

	if cfg.Snapshots.Enabled && cfg.Snapshots.AutosaveInterval > 0 {
		go autosaveLoop(ctx, versionSvc, snapshotRepo, cfg.Snapshots.AutosaveInterval, logr)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}

	if cfg.Snapshots.Enabled {
		if err := versionSvc.SaveSnapshot(shutdownCtx); err != nil {
			logr.Error("final snapshot failed", zap.Error(err))
		}
	}
}

// newVersionService passes the snapshot repository through only when
// persistence is enabled; the service treats a nil repository as disabled.
func newVersionService(cfg *config.Config, store *planstore.Store, snapshots *repository.SnapshotRepository, validate *validator.Validate, cacheSvc *service.CacheService, logr *zap.Logger) *service.VersionService {
	if !cfg.Snapshots.Enabled {
		return service.NewVersionService(store, nil, validate, cacheSvc, logr)
	}
	return service.NewVersionService(store, snapshots, validate, cacheSvc, logr)
}

// buildStore assembles the in-memory plan from the newest snapshot, falling
// back to the configured seed file, and overlays the holiday catalog.
func buildStore(ctx context.Context, cfg *config.Config, logr *zap.Logger, snapshots *repository.SnapshotRepository, holidays *repository.HolidayRepository) *planstore.Store {
	var state models.PlanState
	restored := false

	if cfg.Snapshots.Enabled {
		loaded, err := snapshots.Load(ctx)
		if err != nil {
			logr.Warn("failed to load plan snapshot", zap.Error(err))
		} else if loaded != nil {
			state = *loaded
			restored = true
			logr.Info("plan restored from snapshot",
				zap.Uint64("revision", state.Revision),
				zap.Int("versions", len(state.Versions)))
		}
	}

	if !restored && cfg.Planner.SeedFile != "" {
		seeded, err := planstore.LoadSeedFile(cfg.Planner.SeedFile)
		if err != nil {
			logr.Warn("failed to load seed file", zap.String("path", cfg.Planner.SeedFile), zap.Error(err))
		} else {
			state = seeded
			logr.Info("plan seeded from file",
				zap.String("path", cfg.Planner.SeedFile),
				zap.Int("employees", len(state.Employees)))
		}
	}

	state = planstore.Normalize(state)

	if catalog, err := holidays.List(ctx); err != nil {
		logr.Warn("failed to load holiday catalog", zap.Error(err))
	} else if len(catalog) > 0 {
		state.Holidays = mergeHolidays(state.Holidays, catalog)
	}

	return planstore.New(state, planstore.WithLogger(logr))
}

// mergeHolidays overlays the database catalog on top of the seeded holidays,
// with the catalog winning on (date, location) collisions.
func mergeHolidays(seeded, catalog []models.PublicHoliday) []models.PublicHoliday {
	merged := make([]models.PublicHoliday, 0, len(seeded)+len(catalog))
	seen := make(map[string]struct{}, len(catalog))
	for _, h := range catalog {
		seen[h.Date+"|"+h.Location] = struct{}{}
		merged = append(merged, h)
	}
	for _, h := range seeded {
		if _, ok := seen[h.Date+"|"+h.Location]; !ok {
			merged = append(merged, h)
		}
	}
	return merged
}

// autosaveLoop persists the plan periodically and drops snapshots past the
// retention window, always keeping the newest one.
func autosaveLoop(ctx context.Context, versions *service.VersionService, snapshots *repository.SnapshotRepository, interval time.Duration, logr *zap.Logger) {
	const retention = 7 * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := versions.SaveSnapshot(ctx); err != nil {
				logr.Warn("plan autosave failed", zap.Error(err))
				continue
			}
			if _, err := snapshots.Prune(ctx, time.Now().Add(-retention)); err != nil {
				logr.Warn("snapshot prune failed", zap.Error(err))
			}
		}
	}
}
