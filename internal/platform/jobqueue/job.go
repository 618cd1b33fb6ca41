// Package jobqueue implements a durable job queue stored in the application
// database. Jobs enqueued through a Queue built over a transaction handle commit
// or roll back together with that transaction.
package jobqueue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	defaultMaxAttempts = 5
	tableName          = "jobs"
)

// Job is one row of the jobs table. Completed jobs are deleted; jobs that
// exhaust MaxAttempts keep their row with FailedAt set.
type Job struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Channel     string         `gorm:"size:64;not null;index:idx_jobs_poll,priority:1"`
	Name        string         `gorm:"size:128;not null"`
	Payload     datatypes.JSON `gorm:"not null"`
	Attempts    int            `gorm:"not null"`
	MaxAttempts int            `gorm:"not null"`
	RunAt       time.Time      `gorm:"not null;index:idx_jobs_poll,priority:2"`
	LockedUntil *time.Time
	LastError   *string `gorm:"type:text"`
	FailedAt    *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName pins the table name independent of the struct name.
func (Job) TableName() string { return tableName }

// Decode unmarshals the JSON payload into v.
func (j *Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("decode payload of job %s (%s): %w", j.ID, j.Name, err)
	}
	return nil
}

// Spec describes a job to enqueue.
type Spec struct {
	Channel string
	Name    string
	// Payload is marshaled with encoding/json.
	Payload any
	// MaxAttempts defaults to 5 when zero.
	MaxAttempts int
	// RunAt defaults to now when zero.
	RunAt time.Time
}
