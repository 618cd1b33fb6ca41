package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"todo_backend/internal/app/di"
	"todo_backend/internal/platform/config"
	"todo_backend/internal/platform/db"
	"todo_backend/internal/platform/jobqueue"
	"todo_backend/internal/platform/logger"
	platformredis "todo_backend/internal/platform/redis"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenPostgres(ctx, db.Config{
		URL:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxConns,
		Debug:        cfg.LogLevel == "debug",
	})
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	runner := di.NewRunner(gdb, cfg)

	// Redisがあれば登録直後に起床し、なければポーリング間隔で処理する
	rdb, err := platformredis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable; polling only", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		runner.WakeOn(jobqueue.NewRedisNotifier(rdb).Subscribe(ctx, cfg.WorkerChannels...))
	}

	if err := runner.Run(ctx); err != nil {
		log.Error("job runner stopped with error", zap.Error(err))
	}
	log.Info("worker stopped")
}
