// Package redis はジョブ通知に使うRedisクライアントを生成します。
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"todo_backend/internal/platform/logger"
)

// NewClient はRedisへ接続し、疎通を確認したクライアントを返します。
// addrが空の場合は (nil, nil) を返し、呼び出し側はRedisなしで動作します。
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	if addr == "" {
		logger.L().Info("redis not configured; job wake-ups fall back to polling")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	logger.L().Info("redis connection successful", zap.String("address", addr))
	return rdb, nil
}
