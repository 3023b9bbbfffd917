package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/audit"
	"github.com/agrovex/campoflow/internal/config"
	"github.com/agrovex/campoflow/internal/repository/sheets"
	"github.com/agrovex/campoflow/internal/scheduler"
	"github.com/agrovex/campoflow/internal/server/handlers"
	"github.com/agrovex/campoflow/internal/server/router"
	authsvc "github.com/agrovex/campoflow/internal/service/auth"
	fieldsvc "github.com/agrovex/campoflow/internal/service/field"
	fumigationsvc "github.com/agrovex/campoflow/internal/service/fumigation"
	reportingsvc "github.com/agrovex/campoflow/internal/service/reporting"
	stocksvc "github.com/agrovex/campoflow/internal/service/stock"
	usersvc "github.com/agrovex/campoflow/internal/service/user"
	warehousesvc "github.com/agrovex/campoflow/internal/service/warehouse"
	"github.com/agrovex/campoflow/internal/session"
	"github.com/agrovex/campoflow/internal/store"
	"github.com/agrovex/campoflow/internal/store/memory"
	"github.com/agrovex/campoflow/internal/store/mongodb"
	"github.com/agrovex/campoflow/pkg/clients/notify"
	"github.com/agrovex/campoflow/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var st store.Store
	switch cfg.Store.Backend {
	case config.BackendMongo:
		mongoStore, err := mongodb.Connect(context.Background(), cfg.Mongo.URI, cfg.Mongo.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
		}
		defer func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		st = mongoStore
	case config.BackendMemory:
		baseLogger.Warn("using in-memory store, data will not survive restarts")
		st = memory.New()
	}

	recorder := audit.NewRecorder(st, cfg.Audit.BufferSize, baseLogger.Named("audit"))
	defer recorder.Close()

	sessions := session.NewManager()
	authService := authsvc.NewService(st, sessions, baseLogger.Named("svc.auth"))
	if err := authService.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		baseLogger.Fatal("failed to ensure admin account", zap.Error(err))
	}

	validator := fumigationsvc.NewValidator(st)
	fumigationService := fumigationsvc.NewService(st, validator, recorder, baseLogger.Named("svc.fumigation"))
	stockService := stocksvc.NewService(st, recorder, baseLogger.Named("svc.stock"))
	fieldService := fieldsvc.NewService(st, recorder, baseLogger.Named("svc.field"))
	warehouseService := warehousesvc.NewService(st, recorder, baseLogger.Named("svc.warehouse"))
	userService := usersvc.NewService(st, recorder, baseLogger.Named("svc.user"))

	var reportingService *reportingsvc.Service
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.New(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportingService = reportingsvc.NewService(sheetsRepo, fumigationService, stockService, baseLogger.Named("svc.reporting"))
		baseLogger.Info("sheets report export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, report export disabled")
	}

	engine := router.New(router.Handlers{
		Auth:       handlers.NewAuthHandler(authService, baseLogger.Named("handlers.auth")),
		Fumigation: handlers.NewFumigationHandler(fumigationService, baseLogger.Named("handlers.fumigation")),
		Stock:      handlers.NewStockHandler(stockService, baseLogger.Named("handlers.stock")),
		Field:      handlers.NewFieldHandler(fieldService, baseLogger.Named("handlers.field")),
		Warehouse:  handlers.NewWarehouseHandler(warehouseService, baseLogger.Named("handlers.warehouse")),
		User:       handlers.NewUserHandler(userService, baseLogger.Named("handlers.user")),
		Report:     handlers.NewReportHandler(reportingService, baseLogger.Named("handlers.report")),
	}, authService, baseLogger.Named("router"))

	if cfg.Reminder.WebhookURL != "" {
		notifier := notify.NewWebhookClient(cfg.Reminder.WebhookURL)
		sched, err := scheduler.New(cfg.Reminder, fumigationService, notifier, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	} else {
		baseLogger.Warn("reminder webhook missing, scheduled reminders disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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
