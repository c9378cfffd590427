package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"eventdash/internal/api"
	"eventdash/internal/config"
	"eventdash/internal/logger"
	"eventdash/internal/repository"
	"eventdash/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := repository.NewDB(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	eventRepo := repository.NewEventRepository(db)

	summarySvc := service.NewSummaryService(categoryRepo, eventRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	eventSvc := service.NewEventService(eventRepo, categoryRepo, zlog)

	if cfg.RetentionDays > 0 {
		scheduler := service.NewSchedulerService(time.Local)
		if _, err := scheduler.ScheduleDaily(cfg.RetentionAt, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := eventSvc.PurgeExpired(jobCtx, cfg.RetentionDays, time.Now()); err != nil {
				zlog.Error("retention purge", zap.Error(err))
			}
		}); err != nil {
			zlog.Fatal("schedule retention purge", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := api.NewServer(cfg, zlog, db, userRepo, summarySvc, categorySvc, eventSvc)

	zlog.Info("event dashboard backend started", zap.String("addr", cfg.HTTPAddr))
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Fatal("server stopped", zap.Error(err))
	}
	zlog.Info("shutdown complete")
}
