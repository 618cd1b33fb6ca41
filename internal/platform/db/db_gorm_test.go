package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:64;not null;uniqueIndex"`
}

// setupTestDB prepares an in-memory SQLite database with a single connection,
// since every new connection to :memory: would see an empty database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), NewGormConfig(zap.NewNop(), gormlogger.Silent))
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(context.Background(), db, &widget{}))
	return db
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		assert.Equal(t, "test-dsn", dsn)
		return mockDB, nil
	}

	db, err := ConnectWithRetry(context.Background(), "test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	// 200ms + 400ms of backoff before the third attempt
	db, err := ConnectWithRetry(context.Background(), "test-dsn", 10*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, errors.New("connection refused")
	}

	_, err := ConnectWithRetry(context.Background(), "test-dsn", 100*time.Millisecond, opener)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.GreaterOrEqual(t, attempts, 1)
}

// TestConnectWithRetry_Canceled はコンテキストのキャンセルで待機を打ち切ることを検証します。
func TestConnectWithRetry_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	opener := func(dsn string) (*gorm.DB, error) {
		cancel()
		return nil, errors.New("connection refused")
	}

	_, err := ConnectWithRetry(ctx, "test-dsn", time.Minute, opener)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff_NextDelay(t *testing.T) {
	t.Parallel()

	b := backoff{delay: 200 * time.Millisecond, maxDelay: 5 * time.Second}

	assert.Equal(t, 200*time.Millisecond, b.nextDelay(0))
	assert.Equal(t, 800*time.Millisecond, b.nextDelay(2))
	assert.Equal(t, 5*time.Second, b.nextDelay(5))
	assert.Equal(t, 5*time.Second, b.nextDelay(64))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "gorm translated", err: fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "postgres sqlstate", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "other sqlstate", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
}

func TestSQLiteDuplicateIsTranslated(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	err := db.Create(&widget{Name: "a"}).Error

	assert.True(t, IsUniqueViolation(err), "got %v", err)
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commit on success", func(t *testing.T) {
		db := setupTestDB(t)

		err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
			return tx.Create(&widget{Name: "committed"}).Error
		})

		require.NoError(t, err)
		var count int64
		require.NoError(t, db.Model(&widget{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rollback on error", func(t *testing.T) {
		db := setupTestDB(t)
		boom := errors.New("boom")

		err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&widget{Name: "rolled-back"}).Error)
			return boom
		})

		assert.ErrorIs(t, err, boom)
		var count int64
		require.NoError(t, db.Model(&widget{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("rollback and repanic", func(t *testing.T) {
		db := setupTestDB(t)

		assert.PanicsWithValue(t, "kaboom", func() {
			_ = WithTransaction(ctx, db, func(tx *gorm.DB) error {
				require.NoError(t, tx.Create(&widget{Name: "panicked"}).Error)
				panic("kaboom")
			})
		})

		var count int64
		require.NoError(t, db.Model(&widget{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestWithTransaction_Postgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), NewGormConfig(zap.NewNop(), gormlogger.Silent))
	require.NoError(t, err)

	t.Run("commit failure is reported", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

		err := WithTransaction(context.Background(), db, func(tx *gorm.DB) error { return nil })

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure is reported", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		called := false
		err := WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
			called = true
			return nil
		})

		require.Error(t, err)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
