// Package router はHTTPルーティングを組み立てます。
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todo_backend/internal/app/di"
	platformhandler "todo_backend/internal/platform/http/handler"
	"todo_backend/internal/platform/logger"
)

// NewRouter はハンドラーをルートに登録したgin.Engineを返します。
func NewRouter(h di.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)
	// DB・Redisの疎通確認
	r.GET("/readyz", h.Ready.Ready)

	users := r.Group("/users")
	{
		users.POST("", h.User.Register)
		users.GET("", h.User.List)
		users.GET("/by-email", h.User.GetByEmail)
		users.GET("/:id", h.User.Get)
		users.PATCH("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
		users.GET("/:id/todos", h.Todo.ListForUser)
	}

	todos := r.Group("/todos")
	{
		todos.POST("", h.Todo.Create)
		todos.GET("/:id", h.Todo.Get)
		todos.PATCH("/:id", h.Todo.Update)
		todos.DELETE("/:id", h.Todo.Delete)
		todos.POST("/:id/start", h.Todo.Start)
		todos.POST("/:id/complete", h.Todo.Complete)
	}

	return r
}

// requestLogger はリクエストごとにメソッド・パス・ステータス・処理時間を記録します。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.L().Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
