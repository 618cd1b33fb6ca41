// Package testutil provides shared helpers for package tests.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"todo_backend/internal/platform/db"
)

// SteppingClock returns strictly increasing timestamps, advancing by a fixed
// step on every call. Repositories read time through gorm's NowFunc, so tests
// get deterministic created_at ordering.
//
// Thread-safe.
type SteppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewSteppingClock creates a clock whose first reading is start.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{now: start.UTC().Truncate(time.Microsecond), step: step}
}

// Now returns the current reading and advances the clock.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// NewSQLiteDB opens an in-memory SQLite database with foreign keys enabled and
// migrates models in order. The pool is pinned to one connection because each
// new connection to :memory: would see an empty database.
func NewSQLiteDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	cfg := db.NewGormConfig(zap.NewNop(), gormlogger.Silent)
	cfg.NowFunc = NewSteppingClock(time.Now(), time.Millisecond).Now

	gdb, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), cfg)
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		require.NoError(t, gdb.AutoMigrate(models...), "failed to migrate tables")
	}
	return gdb
}
