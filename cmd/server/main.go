package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/config"
	"github.com/tillnow2/hrms-lite-be/internal/repository/mongodb"
	"github.com/tillnow2/hrms-lite-be/internal/repository/sheets"
	"github.com/tillnow2/hrms-lite-be/internal/scheduler"
	"github.com/tillnow2/hrms-lite-be/internal/server/handlers"
	"github.com/tillnow2/hrms-lite-be/internal/server/router"
	attendancesvc "github.com/tillnow2/hrms-lite-be/internal/service/attendance"
	dashboardsvc "github.com/tillnow2/hrms-lite-be/internal/service/dashboard"
	employeesvc "github.com/tillnow2/hrms-lite-be/internal/service/employees"
	reportingsvc "github.com/tillnow2/hrms-lite-be/internal/service/reporting"
	"github.com/tillnow2/hrms-lite-be/pkg/clients/webhook"
	"github.com/tillnow2/hrms-lite-be/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	baseLogger.Info("starting HRMS Lite API", zap.String("version", handlers.Version))

	mongoClient, err := mongodb.Connect(context.Background(), cfg.MongoDB, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Close(closeCtx); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	mongoClient.EnsureIndexes(indexCtx)
	cancelIndexes()

	db := mongoClient.Database()
	employeeRepo := mongodb.NewEmployeeRepository(db)
	attendanceRepo := mongodb.NewAttendanceRepository(db)
	digestRepo := mongodb.NewDigestRepository(db)

	employeeSvc := employeesvc.NewService(employeeRepo, attendanceRepo, baseLogger.Named("svc.employees"))
	attendanceSvc := attendancesvc.NewService(attendanceRepo, employeeRepo, baseLogger.Named("svc.attendance"))
	dashboardSvc := dashboardsvc.NewService(employeeRepo, attendanceRepo, cfg.Location(), baseLogger.Named("svc.dashboard"))

	engine := router.New(router.Handlers{
		Employees:  handlers.NewEmployeeHandler(employeeSvc, baseLogger.Named("handlers.employees")),
		Attendance: handlers.NewAttendanceHandler(attendanceSvc, baseLogger.Named("handlers.attendance")),
		Dashboard:  handlers.NewDashboardHandler(dashboardSvc, baseLogger.Named("handlers.dashboard")),
	}, cfg.Server, baseLogger.Named("router"))

	if cfg.Reporting.Enabled {
		sinks := reportingsvc.Sinks{SheetRange: cfg.Sheets.DigestRange}

		if cfg.Sheets.Enabled() {
			sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
			if err != nil {
				baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
			}
			sinks.Sheet = sheetsRepo
			baseLogger.Info("google sheets digest sink enabled")
		}

		if cfg.Webhook.URL != "" {
			sinks.Notifier = webhook.NewClient(webhook.Options{
				URL:     cfg.Webhook.URL,
				Token:   cfg.Webhook.Token,
				Timeout: cfg.Webhook.Timeout,
			})
			baseLogger.Info("webhook digest sink enabled")
		}

		reportingSvc := reportingsvc.NewService(dashboardSvc, digestRepo, sinks, baseLogger.Named("svc.reporting"))

		sched := scheduler.NewScheduler(cfg.Reporting, cfg.Location(), reportingSvc, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	} else {
		baseLogger.Warn("daily digest disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
