package jobqueue

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"todo_backend/internal/platform/db"
	"todo_backend/internal/platform/logger"
)

// HandlerFunc processes one job. A returned error schedules a retry.
type HandlerFunc func(ctx context.Context, job *Job) error

// RunnerConfig controls polling and leasing.
type RunnerConfig struct {
	Channels     []string
	Concurrency  int
	PollInterval time.Duration
	// Lease is how long a picked job stays invisible to other runners.
	Lease time.Duration
	// RetryBase is the delay before the first retry; it doubles per attempt
	// up to RetryMax.
	RetryBase time.Duration
	RetryMax  time.Duration
}

func (c RunnerConfig) withDefaults() RunnerConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.Lease <= 0 {
		c.Lease = 5 * time.Minute
	}
	if c.RetryBase <= 0 {
		c.RetryBase = time.Second
	}
	if c.RetryMax <= 0 {
		c.RetryMax = 10 * time.Minute
	}
	return c
}

// Runner polls the jobs table and dispatches leased jobs to handlers by name.
type Runner struct {
	db       *gorm.DB
	cfg      RunnerConfig
	handlers map[string]HandlerFunc
	wake     <-chan struct{}
}

// NewRunner returns a Runner over the pooled db handle.
func NewRunner(db *gorm.DB, cfg RunnerConfig) *Runner {
	return &Runner{
		db:       db,
		cfg:      cfg.withDefaults(),
		handlers: make(map[string]HandlerFunc),
	}
}

// Register binds a handler to a job name. Not safe to call once Run started.
func (r *Runner) Register(name string, h HandlerFunc) {
	r.handlers[name] = h
}

// WakeOn makes Run poll immediately whenever wake delivers a value.
func (r *Runner) WakeOn(wake <-chan struct{}) {
	r.wake = wake
}

// Run polls until ctx is done. It drains ready jobs back to back and sleeps
// PollInterval (or until woken) when the queue is empty.
func (r *Runner) Run(ctx context.Context) error {
	logger.L().Info("job runner started",
		zap.Strings("channels", r.cfg.Channels),
		zap.Int("concurrency", r.cfg.Concurrency),
	)
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			logger.L().Info("job runner stopped")
			return nil
		}

		n, err := r.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			logger.L().Error("job poll failed", zap.Error(err))
		}
		if n > 0 {
			continue
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		case _, ok := <-r.wake:
			if !ok {
				r.wake = nil
			}
		}
	}
}

// RunOnce leases up to Concurrency ready jobs, processes them concurrently and
// returns how many were leased.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	jobs, err := r.lease(ctx, r.cfg.Concurrency)
	if err != nil {
		return 0, err
	}

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i := range jobs {
		job := &jobs[i]
		g.Go(func() error {
			r.process(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	return len(jobs), nil
}

// leaseQuery selects ready jobs. PostgreSQL skips rows locked by other runners.
func (r *Runner) leaseQuery(dialect string, now time.Time, limit int) (string, []any, error) {
	q := sq.Select("*").
		From(tableName).
		Where(sq.Eq{"channel": r.cfg.Channels, "failed_at": nil}).
		Where(sq.LtOrEq{"run_at": now}).
		Where(sq.Or{sq.Eq{"locked_until": nil}, sq.Lt{"locked_until": now}}).
		OrderBy("run_at ASC").
		Limit(uint64(limit))
	if dialect == "postgres" {
		q = q.Suffix("FOR UPDATE SKIP LOCKED")
	}
	return q.ToSql()
}

func (r *Runner) lease(ctx context.Context, limit int) ([]Job, error) {
	now := r.db.NowFunc()
	until := now.Add(r.cfg.Lease)

	var jobs []Job
	err := db.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		query, args, err := r.leaseQuery(tx.Dialector.Name(), now, limit)
		if err != nil {
			return fmt.Errorf("build lease query: %w", err)
		}
		if err := tx.Raw(query, args...).Scan(&jobs).Error; err != nil {
			return fmt.Errorf("select ready jobs: %w", err)
		}
		if len(jobs) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(jobs))
		for i := range jobs {
			ids[i] = jobs[i].ID
		}
		err = tx.Model(&Job{}).Where("id IN ?", ids).Updates(map[string]any{
			"locked_until": until,
			"attempts":     gorm.Expr("attempts + 1"),
			"updated_at":   now,
		}).Error
		if err != nil {
			return fmt.Errorf("lock jobs: %w", err)
		}

		for i := range jobs {
			jobs[i].Attempts++
			jobs[i].LockedUntil = &until
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *Runner) process(ctx context.Context, job *Job) {
	log := logger.L().With(
		zap.String("job_id", job.ID.String()),
		zap.String("job", job.Name),
		zap.String("channel", job.Channel),
		zap.Int("attempt", job.Attempts),
	)

	err := r.invoke(ctx, job)
	if err == nil {
		if err := r.db.WithContext(ctx).Delete(&Job{}, "id = ?", job.ID).Error; err != nil {
			log.Error("failed to delete completed job", zap.Error(err))
			return
		}
		log.Debug("job completed")
		return
	}

	now := r.db.NowFunc()
	msg := err.Error()
	updates := map[string]any{
		"locked_until": nil,
		"last_error":   msg,
		"updated_at":   now,
	}
	if job.Attempts >= job.MaxAttempts {
		updates["failed_at"] = now
		log.Error("job failed permanently", zap.Error(err))
	} else {
		updates["run_at"] = now.Add(r.retryDelay(job.Attempts))
		log.Warn("job failed, will retry", zap.Error(err))
	}
	if err := r.db.WithContext(ctx).Model(&Job{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
		log.Error("failed to record job failure", zap.Error(err))
	}
}

func (r *Runner) invoke(ctx context.Context, job *Job) (err error) {
	h, ok := r.handlers[job.Name]
	if !ok {
		return fmt.Errorf("no handler registered for job %q", job.Name)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job handler panicked: %v", p)
		}
	}()
	return h(ctx, job)
}

// retryDelay returns RetryBase * 2^(attempts-1), capped at RetryMax.
func (r *Runner) retryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := r.cfg.RetryBase
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= r.cfg.RetryMax {
			return r.cfg.RetryMax
		}
	}
	if d > r.cfg.RetryMax {
		return r.cfg.RetryMax
	}
	return d
}
