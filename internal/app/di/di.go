// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	todoadapters "todo_backend/internal/feature/todo/adapters"
	todohandler "todo_backend/internal/feature/todo/transport/handler"
	todousecase "todo_backend/internal/feature/todo/usecase"
	useradapters "todo_backend/internal/feature/user/adapters"
	"todo_backend/internal/feature/user/jobs"
	userhandler "todo_backend/internal/feature/user/transport/handler"
	userusecase "todo_backend/internal/feature/user/usecase"
	"todo_backend/internal/platform/config"
	platformhandler "todo_backend/internal/platform/http/handler"
	"todo_backend/internal/platform/jobqueue"
)

// Models returns every persisted model in foreign-key order.
func Models() []any {
	return []any{
		&useradapters.UserModel{},
		&todoadapters.TodoModel{},
		&jobqueue.Job{},
	}
}

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	User  *userhandler.UserHandler
	Todo  *todohandler.TodoHandler
	Ready *platformhandler.ReadinessHandler
}

// NewHandlers wires repositories, usecases and handlers over db.
// rdb may be nil, in which case registration skips the post-commit wake-up.
func NewHandlers(db *gorm.DB, rdb *redis.Client) Handlers {
	users := useradapters.NewUserGorm(db)
	todos := todoadapters.NewTodoGorm(db)

	userUC := userusecase.NewUserUsecase(users, useradapters.NewUnitOfWork(db, useradapters.DefaultEnqueuer), NewNotifier(rdb))
	todoUC := todousecase.NewTodoUsecase(todos, users)

	return Handlers{
		User:  userhandler.NewUserHandler(userUC),
		Todo:  todohandler.NewTodoHandler(todoUC),
		Ready: NewReadinessHandler(db, rdb),
	}
}

// NewNotifier returns a Redis-backed job notifier, or a nil interface when
// Redis is not configured.
func NewNotifier(rdb *redis.Client) userusecase.JobNotifier {
	if rdb == nil {
		return nil
	}
	return jobqueue.NewRedisNotifier(rdb)
}

// NewReadinessHandler checks the database pool and, when configured, Redis.
func NewReadinessHandler(db *gorm.DB, rdb *redis.Client) *platformhandler.ReadinessHandler {
	checks := map[string]platformhandler.Pinger{
		"database": platformhandler.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if rdb != nil {
		checks["redis"] = platformhandler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return platformhandler.NewReadinessHandler(2*time.Second, checks)
}

// NewRunner builds the job runner with every job handler registered.
func NewRunner(db *gorm.DB, cfg *config.Config) *jobqueue.Runner {
	r := jobqueue.NewRunner(db, jobqueue.RunnerConfig{
		Channels:     cfg.WorkerChannels,
		Concurrency:  cfg.WorkerConcurrency,
		PollInterval: cfg.WorkerPollInterval,
	})
	r.Register(jobs.WelcomeEmailJob, jobs.HandleWelcomeEmail)
	return r
}
