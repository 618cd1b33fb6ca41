// Package db はGORMによるデータベース接続、トランザクション、マイグレーションを提供します。
package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"todo_backend/internal/platform/logger"
)

// Config はPostgreSQL接続設定を保持します。
type Config struct {
	URL          string
	MaxOpenConns int
	// ConnectTimeout は接続リトライを諦めるまでの時間です。
	ConnectTimeout time.Duration
	// Debug が true の場合、GORMのSQLトレースをdebugレベルで出力します。
	Debug bool
}

// Opener はDSNからgorm.DBを生成する関数です。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// NewGormConfig はアプリケーション共通のgorm.Configを生成します。
// 重複キーなどのドライバーエラーをgorm.ErrDuplicatedKeyへ変換し、
// 単一ステートメントに暗黙のトランザクションを張りません。
func NewGormConfig(l *zap.Logger, level gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:                 zapGormLogger{zap: l, level: level},
		TranslateError:         true,
		SkipDefaultTransaction: true,
		NowFunc:                Now,
	}
}

// Now はDBに保存するタイムスタンプを返します。
// PostgreSQLの精度に合わせてマイクロ秒に切り捨てたUTC時刻です。
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// OpenPostgres はリトライ付きでPostgreSQLに接続し、コネクションプールを設定します。
func OpenPostgres(ctx context.Context, cfg Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}
	gcfg := NewGormConfig(logger.L(), level)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	db, err := ConnectWithRetry(ctx, cfg.URL, timeout, func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.Open(dsn), gcfg)
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB() error: %w", err)
	}
	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 25
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// ConnectWithRetry は接続に成功するかtimeoutを超えるまでopenerを呼び出します。
// 待ち時間は指数的に伸び、最大5秒です。
func ConnectWithRetry(ctx context.Context, dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	b := backoff{delay: 200 * time.Millisecond, maxDelay: 5 * time.Second}

	for attempt := 0; ; attempt++ {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		logger.L().Warn("DB connect failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))

		wait := b.nextDelay(attempt)
		if remaining := time.Until(deadline); wait > remaining {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("DB connect canceled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

type backoff struct {
	delay    time.Duration
	maxDelay time.Duration
}

func (b backoff) nextDelay(attempt int) time.Duration {
	if attempt > 16 {
		return b.maxDelay
	}
	d := b.delay << attempt
	if d > b.maxDelay {
		return b.maxDelay
	}
	return d
}
