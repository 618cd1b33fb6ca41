package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidSpec is returned when a Spec lacks a channel or a name.
var ErrInvalidSpec = errors.New("jobqueue: channel and name are required")

// Queue inserts and inspects jobs. It holds nothing but the *gorm.DB it was
// built with, which may be the pool or an open transaction.
type Queue struct {
	db *gorm.DB
}

// NewQueue returns a Queue bound to db.
func NewQueue(db *gorm.DB) *Queue {
	return &Queue{db: db}
}

// Enqueue inserts a job row.
func (q *Queue) Enqueue(ctx context.Context, spec Spec) (*Job, error) {
	if spec.Channel == "" || spec.Name == "" {
		return nil, ErrInvalidSpec
	}
	payload, err := json.Marshal(spec.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for %s: %w", spec.Name, err)
	}

	now := q.db.NowFunc()
	job := &Job{
		ID:          uuid.New(),
		Channel:     spec.Channel,
		Name:        spec.Name,
		Payload:     payload,
		MaxAttempts: spec.MaxAttempts,
		RunAt:       spec.RunAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if job.MaxAttempts <= 0 {
		job.MaxAttempts = defaultMaxAttempts
	}
	if job.RunAt.IsZero() {
		job.RunAt = now
	}

	if err := q.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("enqueue %s on %s: %w", spec.Name, spec.Channel, err)
	}
	return job, nil
}

// List returns the jobs of a channel ordered by run_at, including failed ones.
// An empty channel lists every channel.
func (q *Queue) List(ctx context.Context, channel string) ([]Job, error) {
	var jobs []Job
	tx := q.db.WithContext(ctx).Order("run_at ASC")
	if channel != "" {
		tx = tx.Where("channel = ?", channel)
	}
	if err := tx.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Retry makes a failed or waiting job ready again with a fresh attempt budget.
// It reports whether a job with id existed.
func (q *Queue) Retry(ctx context.Context, id uuid.UUID) (bool, error) {
	now := q.db.NowFunc()
	res := q.db.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Updates(map[string]any{
		"attempts":     0,
		"failed_at":    nil,
		"locked_until": nil,
		"run_at":       now,
		"updated_at":   now,
	})
	if res.Error != nil {
		return false, fmt.Errorf("retry job %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
